package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateDaysUntil(t *testing.T) {
	asOf := NewDate(2025, 6, 1)
	cases := []struct {
		d    Date
		want int
	}{
		{NewDate(2025, 6, 1), 0},
		{NewDate(2025, 6, 2), 1},
		{NewDate(2025, 7, 1), 30},
		{NewDate(2025, 5, 31), -1}, // overdue
	}
	for i, tc := range cases {
		if got := tc.d.DaysUntil(asOf); got != tc.want {
			t.Fatalf("case %d expected %d, got %d", i, tc.want, got)
		}
	}
	// Partial days round up: asOf mid-day, deadline next midnight.
	mid := Date{Time: time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)}
	if got := NewDate(2025, 6, 2).DaysUntil(mid); got != 1 {
		t.Fatalf("expected partial day to round up to 1, got %d", got)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestGoalValidate(t *testing.T) {
	good := Goal{
		ID:       1,
		Name:     "Holiday Fund",
		Target:   Money{Cents: 100000},
		Current:  Money{Cents: 40000},
		Deadline: NewDate(2025, 12, 1),
		Status:   StatusActive,
		Participants: []Participant{
			{Name: "Thandi", Role: "admin", Avatar: "T"},
			{Name: "Sipho"},
		},
		Contributions: []Contribution{
			{ID: 1, Name: "Thandi", Amount: Money{Cents: 40000}, Date: NewDate(2025, 1, 15)},
		},
		CreatedDate: NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	dup := good.Clone()
	dup.Participants = append(dup.Participants, Participant{Name: "Thandi"})
	if err := dup.Validate(); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}

	drift := good.Clone()
	drift.Current = Money{Cents: 39999}
	if err := drift.Validate(); !errors.Is(err, ErrLedgerMismatch) {
		t.Fatalf("expected ledger mismatch, got %v", err)
	}

	badTarget := good.Clone()
	badTarget.Target = Money{Cents: 0}
	if err := badTarget.Validate(); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected invalid target, got %v", err)
	}
}

func TestGoalHelpers(t *testing.T) {
	g := Goal{
		Target:       Money{Cents: 100000},
		Current:      Money{Cents: 100000},
		Participants: []Participant{{Name: "Lerato"}},
	}
	if !g.ReadyToComplete() {
		t.Fatalf("expected goal at target to be ready to complete")
	}
	if g.Remaining().Cents != 0 {
		t.Fatalf("expected zero remaining, got %d", g.Remaining().Cents)
	}
	if !g.HasParticipant("Lerato") || g.HasParticipant("Naledi") {
		t.Fatalf("unexpected participant lookup results")
	}
}

func TestGoalCloneIsDeep(t *testing.T) {
	g := Goal{
		Name:          "g",
		Target:        Money{Cents: 100},
		Participants:  []Participant{{Name: "A"}},
		Contributions: []Contribution{{ID: 1, Name: "A", Amount: Money{Cents: 100}, Date: NewDate(2025, 1, 1)}},
	}
	c := g.Clone()
	c.Participants[0].Name = "B"
	c.Contributions[0].Amount.Cents = 1
	if g.Participants[0].Name != "A" || g.Contributions[0].Amount.Cents != 100 {
		t.Fatalf("clone shares backing arrays with original")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.ISO() != "2024-01-15" {
		t.Fatalf("round trip mismatch: %q", d.ISO())
	}
	if _, err := ParseDate("15/01/2024"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
	if (Date{}).ISO() != "" {
		t.Fatalf("zero date should render empty")
	}
}
