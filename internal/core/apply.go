package core

import "strings"

// Validate checks a proposed contribution against the goal's current
// ledger state. Checks run in order and the first failure wins:
// required fields, positive amount, amount within the remaining balance.
// On success it returns the contribution that acceptance would record,
// with a freshly assigned ID unique within the goal.
//
// The participant cross-check is deliberately not part of this chain:
// the ledger accepts contributions from names outside the participant
// list. Callers that want to surface the inconsistency can consult
// CheckParticipant.
func Validate(g Goal, p ProposedContribution) (Contribution, error) {
	if strings.TrimSpace(p.Name) == "" || p.Date.IsZero() {
		return Contribution{}, ErrMissingField
	}
	if p.Amount.Cents <= 0 {
		return Contribution{}, ErrInvalidAmount
	}
	if remaining := g.Remaining(); p.Amount.Cents > remaining.Cents {
		return Contribution{}, &ExceedsRemainingError{Remaining: remaining}
	}
	return Contribution{
		ID:     nextContributionID(g),
		Name:   p.Name,
		Amount: p.Amount,
		Date:   p.Date,
	}, nil
}

// Apply validates the proposal and returns a new goal value with the
// contribution appended and Current advanced by its amount. The caller's
// goal is never mutated; both fields move together so the ledger
// invariant Current == sum(Contributions) holds on the returned value.
func Apply(g Goal, p ProposedContribution) (Goal, Contribution, error) {
	c, err := Validate(g, p)
	if err != nil {
		return Goal{}, Contribution{}, err
	}
	out := g.Clone()
	out.Contributions = append(out.Contributions, c)
	out.Current = Money{Cents: out.Current.Cents + c.Amount.Cents}
	return out, c, nil
}

// CheckParticipant returns an UnknownParticipantError when name is not in
// the goal's participant list, nil otherwise. Advisory only.
func CheckParticipant(g Goal, name string) error {
	if g.HasParticipant(name) {
		return nil
	}
	return &UnknownParticipantError{Name: name}
}

// nextContributionID assigns the next ID within a goal: one past the
// highest existing ID. Monotonic as long as the ledger is append-only.
func nextContributionID(g Goal) int64 {
	var max int64
	for _, c := range g.Contributions {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}
