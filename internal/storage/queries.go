package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Goal is a goals table row.
type Goal struct {
	ID            int64
	Name          string
	TargetCents   int64
	CurrentCents  int64
	Deadline      string
	Status        string
	CreatedDate   string
	CompletedDate string
	Category      string
	Priority      string
}

// Participant is a participants table row.
type Participant struct {
	GoalID   int64
	Position int64
	Name     string
	Role     string
	Avatar   string
}

// Contribution is a contributions table row.
type Contribution struct {
	GoalID      int64
	ID          int64
	Name        string
	AmountCents int64
	Date        string
	SyncStatus  string
	CreatedAt   sql.NullTime
}

const listGoals = `
SELECT id, name, target_cents, current_cents, deadline, status, created_date, completed_date, category, priority
FROM goals
ORDER BY id
`

func (q *Queries) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetCents, &g.CurrentCents, &g.Deadline, &g.Status, &g.CreatedDate, &g.CompletedDate, &g.Category, &g.Priority); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

const getGoal = `
SELECT id, name, target_cents, current_cents, deadline, status, created_date, completed_date, category, priority
FROM goals
WHERE id = ?
`

func (q *Queries) GetGoal(ctx context.Context, id int64) (Goal, error) {
	var g Goal
	err := q.db.QueryRowContext(ctx, getGoal, id).
		Scan(&g.ID, &g.Name, &g.TargetCents, &g.CurrentCents, &g.Deadline, &g.Status, &g.CreatedDate, &g.CompletedDate, &g.Category, &g.Priority)
	return g, err
}

const upsertGoal = `
INSERT INTO goals (id, name, target_cents, current_cents, deadline, status, created_date, completed_date, category, priority)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    target_cents = excluded.target_cents,
    current_cents = excluded.current_cents,
    deadline = excluded.deadline,
    status = excluded.status,
    created_date = excluded.created_date,
    completed_date = excluded.completed_date,
    category = excluded.category,
    priority = excluded.priority
`

func (q *Queries) UpsertGoal(ctx context.Context, g Goal) error {
	_, err := q.db.ExecContext(ctx, upsertGoal,
		g.ID, g.Name, g.TargetCents, g.CurrentCents, g.Deadline, g.Status, g.CreatedDate, g.CompletedDate, g.Category, g.Priority)
	return err
}

const deleteParticipants = `
DELETE FROM participants WHERE goal_id = ?
`

func (q *Queries) DeleteParticipants(ctx context.Context, goalID int64) error {
	_, err := q.db.ExecContext(ctx, deleteParticipants, goalID)
	return err
}

const insertParticipant = `
INSERT INTO participants (goal_id, position, name, role, avatar)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) InsertParticipant(ctx context.Context, p Participant) error {
	_, err := q.db.ExecContext(ctx, insertParticipant, p.GoalID, p.Position, p.Name, p.Role, p.Avatar)
	return err
}

const listParticipants = `
SELECT goal_id, position, name, role, avatar
FROM participants
WHERE goal_id = ?
ORDER BY position
`

func (q *Queries) ListParticipants(ctx context.Context, goalID int64) ([]Participant, error) {
	rows, err := q.db.QueryContext(ctx, listParticipants, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.GoalID, &p.Position, &p.Name, &p.Role, &p.Avatar); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

const insertContribution = `
INSERT INTO contributions (goal_id, id, name, amount_cents, date)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(goal_id, id) DO NOTHING
`

// InsertContribution inserts a contribution row, leaving existing rows
// untouched so their sync status survives goal rewrites.
func (q *Queries) InsertContribution(ctx context.Context, c Contribution) error {
	_, err := q.db.ExecContext(ctx, insertContribution, c.GoalID, c.ID, c.Name, c.AmountCents, c.Date)
	return err
}

const listContributions = `
SELECT goal_id, id, name, amount_cents, date, sync_status, created_at
FROM contributions
WHERE goal_id = ?
ORDER BY id
`

func (q *Queries) ListContributions(ctx context.Context, goalID int64) ([]Contribution, error) {
	rows, err := q.db.QueryContext(ctx, listContributions, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributions []Contribution
	for rows.Next() {
		var c Contribution
		if err := rows.Scan(&c.GoalID, &c.ID, &c.Name, &c.AmountCents, &c.Date, &c.SyncStatus, &c.CreatedAt); err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}

const getContribution = `
SELECT goal_id, id, name, amount_cents, date, sync_status, created_at
FROM contributions
WHERE goal_id = ? AND id = ?
`

func (q *Queries) GetContribution(ctx context.Context, goalID, id int64) (Contribution, error) {
	var c Contribution
	err := q.db.QueryRowContext(ctx, getContribution, goalID, id).
		Scan(&c.GoalID, &c.ID, &c.Name, &c.AmountCents, &c.Date, &c.SyncStatus, &c.CreatedAt)
	return c, err
}

const getPendingExportContributions = `
SELECT goal_id, id, name, amount_cents, date, sync_status, created_at
FROM contributions
WHERE sync_status = 'pending'
ORDER BY created_at
LIMIT ?
`

func (q *Queries) GetPendingExportContributions(ctx context.Context, limit int64) ([]Contribution, error) {
	rows, err := q.db.QueryContext(ctx, getPendingExportContributions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributions []Contribution
	for rows.Next() {
		var c Contribution
		if err := rows.Scan(&c.GoalID, &c.ID, &c.Name, &c.AmountCents, &c.Date, &c.SyncStatus, &c.CreatedAt); err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}

const markContributionSynced = `
UPDATE contributions SET sync_status = 'synced' WHERE goal_id = ? AND id = ?
`

func (q *Queries) MarkContributionSynced(ctx context.Context, goalID, id int64) error {
	_, err := q.db.ExecContext(ctx, markContributionSynced, goalID, id)
	return err
}

const markContributionSyncError = `
UPDATE contributions SET sync_status = 'error' WHERE goal_id = ? AND id = ?
`

func (q *Queries) MarkContributionSyncError(ctx context.Context, goalID, id int64) error {
	_, err := q.db.ExecContext(ctx, markContributionSyncError, goalID, id)
	return err
}
