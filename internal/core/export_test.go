package core

import (
	"errors"
	"strings"
	"testing"
)

func TestExportRowsCompleteness(t *testing.T) {
	goals := sampleGoals()
	rows := ExportRows(goals)
	// max(1, len(contributions)) rows per goal: 2 + 2 + 1.
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	perGoal := make(map[string]int)
	for _, r := range rows {
		perGoal[r.GoalName]++
	}
	if perGoal["Trip"] != 2 || perGoal["Fees"] != 2 || perGoal["Emergency"] != 1 {
		t.Fatalf("unexpected distribution: %v", perGoal)
	}
	// Placeholder row keeps contributor fields empty.
	last := rows[4]
	if last.Contributor != "" || last.Amount.Cents != 0 || !last.Date.IsZero() {
		t.Fatalf("placeholder row carries contribution data: %+v", last)
	}
}

func TestRenderCSVExactPayload(t *testing.T) {
	goals := []Goal{
		{
			Name: "Trip", Target: Money{Cents: 100000}, Current: Money{Cents: 40000},
			Status: StatusActive, CreatedDate: NewDate(2024, 1, 15),
			Contributions: []Contribution{
				{ID: 1, Name: "Thandi", Amount: Money{Cents: 40000}, Date: NewDate(2024, 2, 1)},
			},
		},
		{
			Name: "Fund", Target: Money{Cents: 5000}, Current: Money{Cents: 0},
			Status: StatusActive, CreatedDate: NewDate(2024, 3, 1),
		},
	}
	got := string(RenderCSV(ExportRows(goals)))
	want := "Goal Name,Target,Current,Status,Created Date,Completed Date,Participant,Contribution Amount,Contribution Date\n" +
		`"Trip",1000,400,"active","2024-01-15","","Thandi",400,"2024-02-01"` + "\n" +
		`"Fund",50,0,"active","2024-03-01","","","",""` + "\n"
	if got != want {
		t.Fatalf("payload mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderCSVEscapesQuotes(t *testing.T) {
	goals := []Goal{{
		Name: `The "Big" One`, Target: Money{Cents: 100}, Status: StatusActive,
		CreatedDate: NewDate(2024, 1, 1),
	}}
	got := string(RenderCSV(ExportRows(goals)))
	if !strings.Contains(got, `"The ""Big"" One"`) {
		t.Fatalf("quotes not escaped: %q", got)
	}
}

// End-to-end scenario over the full engine surface: suggest, accept,
// reject against stale state.
func TestEndToEndScenario(t *testing.T) {
	g := Goal{
		Name: "Scenario", Target: Money{Cents: 100000}, Current: Money{Cents: 40000},
		Deadline: NewDate(2025, 12, 1), Status: StatusActive,
		Participants: []Participant{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		Contributions: []Contribution{
			{ID: 1, Name: "A", Amount: Money{Cents: 40000}, Date: NewDate(2025, 1, 1)},
		},
		CreatedDate: NewDate(2025, 1, 1),
	}

	s := Suggest(g)
	if s.Full.Cents != 60000 || s.Half.Cents != 30000 || s.EqualSplit.Cents != 30000 {
		t.Fatalf("unexpected suggestion: %+v", s)
	}

	next, _, err := Apply(g, ProposedContribution{Name: "B", Amount: Money{Cents: 30000}, Date: NewDate(2025, 6, 1)})
	if err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
	if next.Current.Cents != 70000 || len(next.Contributions) != 2 {
		t.Fatalf("unexpected state after accept: %+v", next)
	}

	// Against the ORIGINAL state, 700 still exceeds the 600 remainder.
	_, err = Validate(g, ProposedContribution{Name: "B", Amount: Money{Cents: 70000}, Date: NewDate(2025, 6, 1)})
	var exceeds *ExceedsRemainingError
	if !errors.As(err, &exceeds) || exceeds.Remaining.Cents != 60000 {
		t.Fatalf("expected ExceedsRemaining{60000}, got %v", err)
	}
}
