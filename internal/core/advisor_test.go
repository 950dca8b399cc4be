package core

import "testing"

func TestSuggestEqualSplit(t *testing.T) {
	// Target 1000, current 400, three participants of whom one has
	// contributed: split the 600 remainder over the two others.
	g := testGoal()
	s := Suggest(g)
	if s.Full.Cents != 60000 {
		t.Fatalf("expected full 60000, got %d", s.Full.Cents)
	}
	if s.Half.Cents != 30000 {
		t.Fatalf("expected half 30000, got %d", s.Half.Cents)
	}
	if s.EqualSplit.Cents != 30000 {
		t.Fatalf("expected equal split 30000, got %d", s.EqualSplit.Cents)
	}
}

func TestSuggestCeilingDivision(t *testing.T) {
	g := Goal{
		Target:       Money{Cents: 10001},
		Participants: []Participant{{Name: "A"}, {Name: "B"}, {Name: "C"}},
	}
	s := Suggest(g)
	// ceil(10001 / 3) = 3334, never under-suggest.
	if s.EqualSplit.Cents != 3334 {
		t.Fatalf("expected 3334, got %d", s.EqualSplit.Cents)
	}
	if s.EqualSplit.Cents*3 < s.Full.Cents {
		t.Fatalf("equal split under-covers the remainder")
	}
}

func TestSuggestAllContributed(t *testing.T) {
	g := testGoal()
	g.Contributions = append(g.Contributions,
		Contribution{ID: 2, Name: "B", Amount: Money{Cents: 10000}, Date: NewDate(2025, 2, 1)},
		Contribution{ID: 3, Name: "C", Amount: Money{Cents: 10000}, Date: NewDate(2025, 2, 2)},
	)
	g.Current.Cents += 20000
	s := Suggest(g)
	// No remaining non-contributors: fall back to the full remainder.
	if s.EqualSplit.Cents != s.Full.Cents || s.Full.Cents != 40000 {
		t.Fatalf("expected equal split to equal full remainder 40000, got %d/%d", s.EqualSplit.Cents, s.Full.Cents)
	}
}

func TestSuggestNoParticipants(t *testing.T) {
	g := Goal{Target: Money{Cents: 5000}}
	s := Suggest(g)
	if s.EqualSplit.Cents != 5000 || s.Full.Cents != 5000 || s.Half.Cents != 2500 {
		t.Fatalf("unexpected suggestion for participant-less goal: %+v", s)
	}
}

func TestSuggestIsPure(t *testing.T) {
	g := testGoal()
	first := Suggest(g)
	second := Suggest(g)
	if first != second {
		t.Fatalf("suggest is not idempotent on unchanged state: %+v vs %+v", first, second)
	}
}
