package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StatusActive    GoalStatus = "active"
	StatusCompleted GoalStatus = "completed"
)

type (
	GoalStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Participant is a member of a goal. Identity is the name,
	// case-sensitive and unique within a goal.
	Participant struct {
		Name   string
		Role   string
		Avatar string // display glyph, opaque to the engine
	}

	// Contribution is a single recorded payment toward a goal.
	// Immutable once created; IDs are unique within the owning goal.
	Contribution struct {
		ID     int64
		Name   string
		Amount Money
		Date   Date
	}

	Goal struct {
		ID            int64
		Name          string
		Target        Money
		Current       Money
		Deadline      Date
		Status        GoalStatus
		Participants  []Participant
		Contributions []Contribution
		CreatedDate   Date
		CompletedDate Date // zero unless completed
		Category      string
		Priority      string
	}

	// ProposedContribution is the caller-supplied input to the validator,
	// before an ID has been assigned.
	ProposedContribution struct {
		Name   string
		Amount Money
		Date   Date
	}
)

var (
	ErrMissingField   = errors.New("missing required field")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidTarget  = errors.New("invalid target amount")
	ErrEmptyName      = errors.New("empty name")
	ErrDuplicateName  = errors.New("duplicate participant name")
	ErrLedgerMismatch = errors.New("current amount does not match contribution sum")
)

// ExceedsRemainingError reports a contribution larger than the goal's
// remaining balance. Remaining carries the amount still open so callers
// can surface it.
type ExceedsRemainingError struct {
	Remaining Money
}

func (e *ExceedsRemainingError) Error() string {
	return fmt.Sprintf("amount exceeds remaining target: maximum R%s", e.Remaining.DecimalString())
}

// UnknownParticipantError reports a contributor name not present in the
// goal's participant list. This is advisory: the ledger still accepts
// such contributions.
type UnknownParticipantError struct {
	Name string
}

func (e *UnknownParticipantError) Error() string {
	return fmt.Sprintf("contributor %q is not a goal participant", e.Name)
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// ISO renders the date as 2006-01-02, or "" for the zero date.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// DaysUntil returns the whole days from asOf to d, rounding partial days
// up. Negative means d is in the past.
func (d Date) DaysUntil(asOf Date) int {
	diff := d.Sub(asOf.Time)
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Participant) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Contribution) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	return c.Date.Validate()
}

// Validate checks the structural invariants of a goal: positive target,
// unique participant names, valid contributions and a current amount that
// equals the contribution sum.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.Target.Cents <= 0 {
		return ErrInvalidTarget
	}
	seen := make(map[string]struct{}, len(g.Participants))
	for _, p := range g.Participants {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	var sum int64
	for _, c := range g.Contributions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("contribution %d: %w", c.ID, err)
		}
		sum += c.Amount.Cents
	}
	if sum != g.Current.Cents {
		return ErrLedgerMismatch
	}
	return nil
}

// Remaining is target - current. It can be negative for out-of-band data
// where current exceeds target.
func (g Goal) Remaining() Money {
	return Money{Cents: g.Target.Cents - g.Current.Cents}
}

// ReadyToComplete reports whether the goal has reached its target. The
// status transition itself is a caller decision.
func (g Goal) ReadyToComplete() bool {
	return g.Current.Cents >= g.Target.Cents
}

// HasParticipant reports whether name is in the participant list.
func (g Goal) HasParticipant(name string) bool {
	for _, p := range g.Participants {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; the apply path never mutates caller state.
func (g Goal) Clone() Goal {
	out := g
	out.Participants = append([]Participant(nil), g.Participants...)
	out.Contributions = append([]Contribution(nil), g.Contributions...)
	return out
}
