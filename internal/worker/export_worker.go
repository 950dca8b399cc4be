package worker

import (
	"context"
	"fmt"
	"log/slog"

	"stokvel/internal/amqp"
	"stokvel/internal/core"
	"stokvel/internal/ledger"
	"stokvel/internal/metrics"
	"stokvel/internal/storage"
)

// ExportStorage is the slice of the repository the export worker needs.
// *storage.SQLiteRepository satisfies it.
type ExportStorage interface {
	GetGoal(ctx context.Context, id int64) (core.Goal, error)
	GetContribution(ctx context.Context, goalID, id int64) (core.Contribution, error)
	GetPendingExportContributions(ctx context.Context, limit int) ([]storage.PendingExportContribution, error)
	MarkExported(ctx context.Context, goalID, id int64) error
	MarkExportError(ctx context.Context, goalID, id int64) error
}

// ExportWorker pushes recorded contributions from SQLite to the export
// sink, driven by AMQP sync messages with a pending-queue sweep as backup.
type ExportWorker struct {
	storage   ExportStorage
	sink      ledger.ExportSink
	batchSize int
}

func NewExportWorker(storage ExportStorage, sink ledger.ExportSink, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		sink:      sink,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single contribution sync message from AMQP
func (w *ExportWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ContributionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"goal_id", msg.GoalID,
		"contribution_id", msg.ContributionID)

	return w.exportContribution(ctx, msg.GoalID, msg.ContributionID)
}

// ProcessPendingContributions exports contributions that have not reached
// the sink yet. This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPendingContributions(ctx context.Context) error {
	pending, err := w.storage.GetPendingExportContributions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending contributions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending contributions", "count", len(pending))

	for _, p := range pending {
		if err := w.exportContribution(ctx, p.GoalID, p.ContributionID); err != nil {
			slog.ErrorContext(ctx, "Failed to export contribution",
				"goal_id", p.GoalID, "contribution_id", p.ContributionID, "error", err)
			continue
		}
	}

	return nil
}

// StartupExportCheck sweeps the pending queue at worker startup to
// recover from missed AMQP messages or worker downtime.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingExportContributions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending contributions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending contributions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending contributions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.exportContribution(ctx, p.GoalID, p.ContributionID); err != nil {
			slog.ErrorContext(ctx, "Failed to export contribution during startup",
				"goal_id", p.GoalID, "contribution_id", p.ContributionID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportContribution(ctx context.Context, goalID, contributionID int64) error {
	goal, err := w.storage.GetGoal(ctx, goalID)
	if err != nil {
		w.markError(ctx, goalID, contributionID)
		return fmt.Errorf("get goal from storage: %w", err)
	}

	contribution, err := w.storage.GetContribution(ctx, goalID, contributionID)
	if err != nil {
		w.markError(ctx, goalID, contributionID)
		return fmt.Errorf("get contribution from storage: %w", err)
	}

	row := core.ExportRow{
		GoalName:      goal.Name,
		Target:        goal.Target,
		Current:       goal.Current,
		Status:        goal.Status,
		CreatedDate:   goal.CreatedDate,
		CompletedDate: goal.CompletedDate,
		Contributor:   contribution.Name,
		Amount:        contribution.Amount,
		Date:          contribution.Date,
	}

	ref, err := w.sink.AppendRow(ctx, row)
	if err != nil {
		w.markError(ctx, goalID, contributionID)
		return fmt.Errorf("append to export sink: %w", err)
	}

	metrics.RecordExportRow()

	if err := w.storage.MarkExported(ctx, goalID, contributionID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as exported",
			"goal_id", goalID, "contribution_id", contributionID, "error", err)
		// Don't return an error here, the export itself worked
	}

	slog.InfoContext(ctx, "Successfully exported contribution",
		"goal_id", goalID,
		"contribution_id", contributionID,
		"sheets_ref", ref,
		"contributor", contribution.Name,
		"amount_cents", contribution.Amount.Cents)

	return nil
}

func (w *ExportWorker) markError(ctx context.Context, goalID, contributionID int64) {
	metrics.RecordExportError()
	if err := w.storage.MarkExportError(ctx, goalID, contributionID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark export error",
			"goal_id", goalID, "contribution_id", contributionID, "error", err)
	}
}
