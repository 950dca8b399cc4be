package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"stokvel/internal/core"
	"stokvel/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListGoals implements ledger.GoalSource
func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	goals := make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		goal, err := r.assembleGoal(ctx, row)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, nil
}

// GetGoal implements ledger.GoalSource
func (r *SQLiteRepository) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	row, err := r.queries.GetGoal(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Goal{}, ledger.ErrGoalNotFound
		}
		return core.Goal{}, fmt.Errorf("get goal %d: %w", id, err)
	}
	return r.assembleGoal(ctx, row)
}

func (r *SQLiteRepository) assembleGoal(ctx context.Context, row Goal) (core.Goal, error) {
	goal, err := goalFromRow(row)
	if err != nil {
		return core.Goal{}, err
	}

	participants, err := r.queries.ListParticipants(ctx, row.ID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("list participants for goal %d: %w", row.ID, err)
	}
	for _, p := range participants {
		goal.Participants = append(goal.Participants, core.Participant{
			Name:   p.Name,
			Role:   p.Role,
			Avatar: p.Avatar,
		})
	}

	contributions, err := r.queries.ListContributions(ctx, row.ID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("list contributions for goal %d: %w", row.ID, err)
	}
	for _, c := range contributions {
		date, err := parseStoredDate(c.Date)
		if err != nil {
			return core.Goal{}, fmt.Errorf("contribution %d/%d date: %w", c.GoalID, c.ID, err)
		}
		goal.Contributions = append(goal.Contributions, core.Contribution{
			ID:     c.ID,
			Name:   c.Name,
			Amount: core.Money{Cents: c.AmountCents},
			Date:   date,
		})
	}

	return goal, nil
}

// ReplaceGoal implements ledger.GoalStore. The goal row and participant
// list are rewritten; contribution rows are append-only so pending
// export state is preserved.
func (r *SQLiteRepository) ReplaceGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid goal: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)

	if err := q.UpsertGoal(ctx, goalToRow(g)); err != nil {
		return fmt.Errorf("upsert goal %d: %w", g.ID, err)
	}

	if err := q.DeleteParticipants(ctx, g.ID); err != nil {
		return fmt.Errorf("delete participants for goal %d: %w", g.ID, err)
	}
	for i, p := range g.Participants {
		if err := q.InsertParticipant(ctx, Participant{
			GoalID:   g.ID,
			Position: int64(i),
			Name:     p.Name,
			Role:     p.Role,
			Avatar:   p.Avatar,
		}); err != nil {
			return fmt.Errorf("insert participant %q for goal %d: %w", p.Name, g.ID, err)
		}
	}

	for _, c := range g.Contributions {
		if err := q.InsertContribution(ctx, Contribution{
			GoalID:      g.ID,
			ID:          c.ID,
			Name:        c.Name,
			AmountCents: c.Amount.Cents,
			Date:        c.Date.ISO(),
		}); err != nil {
			return fmt.Errorf("insert contribution %d for goal %d: %w", c.ID, g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit goal %d: %w", g.ID, err)
	}

	slog.InfoContext(ctx, "Goal saved to SQLite",
		"goal_id", g.ID,
		"name", g.Name,
		"current_cents", g.Current.Cents,
		"contributions", len(g.Contributions))

	return nil
}

// GetContribution retrieves a single contribution by goal and ID.
func (r *SQLiteRepository) GetContribution(ctx context.Context, goalID, id int64) (core.Contribution, error) {
	row, err := r.queries.GetContribution(ctx, goalID, id)
	if err != nil {
		return core.Contribution{}, fmt.Errorf("get contribution %d/%d: %w", goalID, id, err)
	}
	date, err := parseStoredDate(row.Date)
	if err != nil {
		return core.Contribution{}, fmt.Errorf("contribution %d/%d date: %w", goalID, id, err)
	}
	return core.Contribution{
		ID:     row.ID,
		Name:   row.Name,
		Amount: core.Money{Cents: row.AmountCents},
		Date:   date,
	}, nil
}

// PendingExportContribution identifies a contribution waiting for export.
type PendingExportContribution struct {
	GoalID         int64
	ContributionID int64
}

// GetPendingExportContributions returns contributions that have not been
// exported yet, oldest first.
func (r *SQLiteRepository) GetPendingExportContributions(ctx context.Context, limit int) ([]PendingExportContribution, error) {
	rows, err := r.queries.GetPendingExportContributions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending export contributions: %w", err)
	}

	pending := make([]PendingExportContribution, len(rows))
	for i, row := range rows {
		pending[i] = PendingExportContribution{
			GoalID:         row.GoalID,
			ContributionID: row.ID,
		}
	}
	return pending, nil
}

// MarkExported marks a contribution as successfully exported.
func (r *SQLiteRepository) MarkExported(ctx context.Context, goalID, id int64) error {
	if err := r.queries.MarkContributionSynced(ctx, goalID, id); err != nil {
		return fmt.Errorf("mark contribution exported: %w", err)
	}

	slog.InfoContext(ctx, "Contribution marked as exported", "goal_id", goalID, "contribution_id", id)
	return nil
}

// MarkExportError marks a contribution as having export errors.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, goalID, id int64) error {
	if err := r.queries.MarkContributionSyncError(ctx, goalID, id); err != nil {
		return fmt.Errorf("mark contribution export error: %w", err)
	}

	slog.WarnContext(ctx, "Contribution marked with export error", "goal_id", goalID, "contribution_id", id)
	return nil
}

func goalToRow(g core.Goal) Goal {
	return Goal{
		ID:            g.ID,
		Name:          g.Name,
		TargetCents:   g.Target.Cents,
		CurrentCents:  g.Current.Cents,
		Deadline:      g.Deadline.ISO(),
		Status:        string(g.Status),
		CreatedDate:   g.CreatedDate.ISO(),
		CompletedDate: g.CompletedDate.ISO(),
		Category:      g.Category,
		Priority:      g.Priority,
	}
}

func goalFromRow(row Goal) (core.Goal, error) {
	goal := core.Goal{
		ID:       row.ID,
		Name:     row.Name,
		Target:   core.Money{Cents: row.TargetCents},
		Current:  core.Money{Cents: row.CurrentCents},
		Status:   core.GoalStatus(row.Status),
		Category: row.Category,
		Priority: row.Priority,
	}

	var err error
	if goal.Deadline, err = parseStoredDate(row.Deadline); err != nil {
		return core.Goal{}, fmt.Errorf("goal %d deadline: %w", row.ID, err)
	}
	if goal.CreatedDate, err = parseStoredDate(row.CreatedDate); err != nil {
		return core.Goal{}, fmt.Errorf("goal %d created date: %w", row.ID, err)
	}
	if goal.CompletedDate, err = parseStoredDate(row.CompletedDate); err != nil {
		return core.Goal{}, fmt.Errorf("goal %d completed date: %w", row.ID, err)
	}

	return goal, nil
}

func parseStoredDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
