package ledger

import (
	"context"
	"errors"

	"stokvel/internal/core"
)

// ErrGoalNotFound is returned by sources when no goal has the given id.
var ErrGoalNotFound = errors.New("goal not found")

// Ports for outbound adapters. The engine never owns persistent storage;
// it operates on goal values supplied through these interfaces and hands
// back new values for the store to keep.
type (
	GoalSource interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
		GetGoal(ctx context.Context, id int64) (core.Goal, error)
	}

	// GoalStore extends GoalSource with the single write path: replacing
	// a goal value wholesale after an accepted contribution. Callers must
	// serialize read-validate-replace per goal; the store does not merge.
	GoalStore interface {
		GoalSource
		ReplaceGoal(ctx context.Context, g core.Goal) error
	}

	// ExportSink receives flat export rows, one per recorded
	// contribution, for downstream spreadsheet or file consumers.
	ExportSink interface {
		AppendRow(ctx context.Context, row core.ExportRow) (ref string, err error)
	}
)
