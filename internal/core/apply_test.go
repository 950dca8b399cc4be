package core

import (
	"errors"
	"testing"
)

func testGoal() Goal {
	return Goal{
		ID:       1,
		Name:     "December Trip",
		Target:   Money{Cents: 100000},
		Current:  Money{Cents: 40000},
		Deadline: NewDate(2025, 12, 1),
		Status:   StatusActive,
		Participants: []Participant{
			{Name: "A"}, {Name: "B"}, {Name: "C"},
		},
		Contributions: []Contribution{
			{ID: 1, Name: "A", Amount: Money{Cents: 40000}, Date: NewDate(2025, 1, 10)},
		},
		CreatedDate: NewDate(2025, 1, 1),
	}
}

func TestValidateOrderedChecks(t *testing.T) {
	g := testGoal()
	cases := []struct {
		name string
		p    ProposedContribution
		want error
	}{
		{"missing name", ProposedContribution{Amount: Money{Cents: 100}, Date: NewDate(2025, 2, 1)}, ErrMissingField},
		{"missing date", ProposedContribution{Name: "B", Amount: Money{Cents: 100}}, ErrMissingField},
		{"zero amount", ProposedContribution{Name: "B", Date: NewDate(2025, 2, 1)}, ErrInvalidAmount},
		{"negative amount", ProposedContribution{Name: "B", Amount: Money{Cents: -1}, Date: NewDate(2025, 2, 1)}, ErrInvalidAmount},
	}
	for _, tc := range cases {
		if _, err := Validate(g, tc.p); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	// Missing field wins over invalid amount when both apply.
	if _, err := Validate(g, ProposedContribution{Amount: Money{Cents: -1}}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected missing field to win, got %v", err)
	}
}

func TestValidateExceedsRemaining(t *testing.T) {
	g := testGoal()
	_, err := Validate(g, ProposedContribution{Name: "B", Amount: Money{Cents: 70000}, Date: NewDate(2025, 2, 1)})
	var exceeds *ExceedsRemainingError
	if !errors.As(err, &exceeds) {
		t.Fatalf("expected ExceedsRemainingError, got %v", err)
	}
	if exceeds.Remaining.Cents != 60000 {
		t.Fatalf("expected remaining 60000 cents, got %d", exceeds.Remaining.Cents)
	}
}

func TestApplyAcceptsAndReturnsNewState(t *testing.T) {
	g := testGoal()
	next, c, err := Apply(g, ProposedContribution{Name: "B", Amount: Money{Cents: 30000}, Date: NewDate(2025, 2, 1)})
	if err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
	if next.Current.Cents != 70000 || len(next.Contributions) != 2 {
		t.Fatalf("unexpected new state: current=%d contributions=%d", next.Current.Cents, len(next.Contributions))
	}
	if c.ID != 2 {
		t.Fatalf("expected next id 2, got %d", c.ID)
	}
	// Original untouched.
	if g.Current.Cents != 40000 || len(g.Contributions) != 1 {
		t.Fatalf("apply mutated caller state")
	}
	if err := next.Validate(); err != nil {
		t.Fatalf("returned goal violates ledger invariant: %v", err)
	}
}

func TestApplyBoundaryExactRemaining(t *testing.T) {
	g := testGoal()
	next, _, err := Apply(g, ProposedContribution{Name: "C", Amount: Money{Cents: 60000}, Date: NewDate(2025, 2, 1)})
	if err != nil {
		t.Fatalf("amount equal to remaining must be accepted, got %v", err)
	}
	if next.Current.Cents != next.Target.Cents {
		t.Fatalf("expected current to reach target, got %d", next.Current.Cents)
	}
	if !next.ReadyToComplete() {
		t.Fatalf("expected goal to be ready to complete")
	}
}

func TestLedgerConservation(t *testing.T) {
	g := testGoal()
	amounts := []int64{5000, 12500, 1, 42499}
	for i, cents := range amounts {
		var err error
		g, _, err = Apply(g, ProposedContribution{
			Name:   "B",
			Amount: Money{Cents: cents},
			Date:   NewDate(2025, 3, i+1),
		})
		if err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}
	var sum int64
	for _, c := range g.Contributions {
		sum += c.Amount.Cents
	}
	if sum != g.Current.Cents {
		t.Fatalf("conservation broken: sum=%d current=%d", sum, g.Current.Cents)
	}
	if g.Current.Cents != 100000 {
		t.Fatalf("expected 100000 cents, got %d", g.Current.Cents)
	}
}

func TestContributionIDsUniqueWithinGoal(t *testing.T) {
	g := testGoal()
	seen := map[int64]bool{g.Contributions[0].ID: true}
	for i := 0; i < 5; i++ {
		var c Contribution
		var err error
		g, c, err = Apply(g, ProposedContribution{Name: "C", Amount: Money{Cents: 1000}, Date: NewDate(2025, 4, i+1)})
		if err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
		if seen[c.ID] {
			t.Fatalf("duplicate contribution id %d", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestCheckParticipantAdvisory(t *testing.T) {
	g := testGoal()
	if err := CheckParticipant(g, "A"); err != nil {
		t.Fatalf("expected known participant, got %v", err)
	}
	err := CheckParticipant(g, "Stranger")
	var unknown *UnknownParticipantError
	if !errors.As(err, &unknown) || unknown.Name != "Stranger" {
		t.Fatalf("expected UnknownParticipantError for Stranger, got %v", err)
	}
	// Advisory only: apply still accepts the outsider.
	if _, _, err := Apply(g, ProposedContribution{Name: "Stranger", Amount: Money{Cents: 100}, Date: NewDate(2025, 2, 1)}); err != nil {
		t.Fatalf("expected outsider contribution to be accepted, got %v", err)
	}
}
