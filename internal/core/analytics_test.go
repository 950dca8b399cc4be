package core

import "testing"

func TestAnalyzeBasics(t *testing.T) {
	g := testGoal()
	g.Contributions = append(g.Contributions,
		Contribution{ID: 2, Name: "B", Amount: Money{Cents: 20000}, Date: NewDate(2025, 2, 1)},
		Contribution{ID: 3, Name: "A", Amount: Money{Cents: 10000}, Date: NewDate(2025, 3, 1)},
	)
	g.Current.Cents = 70000

	stats := Analyze(g, NewDate(2025, 11, 1))

	if stats.ProgressPct != 70 {
		t.Fatalf("expected progress 70, got %v", stats.ProgressPct)
	}
	if stats.DaysLeft != 30 {
		t.Fatalf("expected 30 days left, got %d", stats.DaysLeft)
	}
	if stats.Urgency != UrgencyUpcoming {
		t.Fatalf("expected upcoming urgency, got %s", stats.Urgency)
	}
	if stats.Remaining.Cents != 30000 {
		t.Fatalf("expected remaining 30000, got %d", stats.Remaining.Cents)
	}
	if stats.TotalContributors != 3 || stats.ActiveContributors != 2 {
		t.Fatalf("unexpected contributor counts: total=%d active=%d", stats.TotalContributors, stats.ActiveContributors)
	}
	// 70000 / 3 contributions, truncated to whole cents.
	if stats.AvgContribution.Cents != 23333 {
		t.Fatalf("expected avg 23333, got %d", stats.AvgContribution.Cents)
	}
}

func TestAnalyzePerParticipant(t *testing.T) {
	g := testGoal()
	stats := Analyze(g, NewDate(2025, 6, 1))
	if len(stats.Participants) != 3 {
		t.Fatalf("expected 3 participant slices, got %d", len(stats.Participants))
	}
	a := stats.Participants[0]
	if a.Name != "A" || a.Contributed.Cents != 40000 || a.Contributions != 1 || !a.HasContributed {
		t.Fatalf("unexpected stats for A: %+v", a)
	}
	b := stats.Participants[1]
	if b.Contributed.Cents != 0 || b.HasContributed {
		t.Fatalf("unexpected stats for B: %+v", b)
	}
}

func TestAnalyzeClampsProgress(t *testing.T) {
	// Out-of-band data where current exceeds target.
	g := Goal{
		Target:  Money{Cents: 1000},
		Current: Money{Cents: 1500},
	}
	stats := Analyze(g, NewDate(2025, 1, 1))
	if stats.ProgressPct != 100 {
		t.Fatalf("expected clamped 100, got %v", stats.ProgressPct)
	}
	if stats.Remaining.Cents != -500 {
		t.Fatalf("expected negative remaining surfaced, got %d", stats.Remaining.Cents)
	}
}

func TestAnalyzeActiveContributorsCountsOutsiders(t *testing.T) {
	g := testGoal()
	g.Contributions = append(g.Contributions,
		Contribution{ID: 2, Name: "Stranger", Amount: Money{Cents: 5000}, Date: NewDate(2025, 2, 1)},
	)
	g.Current.Cents += 5000
	stats := Analyze(g, NewDate(2025, 6, 1))
	// Distinctness is by contribution name, not participant identity.
	if stats.ActiveContributors != 2 {
		t.Fatalf("expected outsider to count as active, got %d", stats.ActiveContributors)
	}
}

func TestAnalyzeEmptyGoal(t *testing.T) {
	g := Goal{
		Target:   Money{Cents: 100000},
		Deadline: NewDate(2026, 1, 1),
	}
	stats := Analyze(g, NewDate(2025, 1, 1))
	if stats.ProgressPct != 0 || stats.AvgContribution.Cents != 0 || stats.ActiveContributors != 0 {
		t.Fatalf("unexpected stats for empty goal: %+v", stats)
	}
	if len(stats.Participants) != 0 {
		t.Fatalf("expected no participant stats")
	}
}

func TestUrgencyThresholds(t *testing.T) {
	asOf := NewDate(2025, 6, 1)
	cases := []struct {
		deadline Date
		want     Urgency
	}{
		{NewDate(2025, 5, 30), UrgencyOverdue},
		{NewDate(2025, 6, 1), UrgencyUrgent},   // 0 days
		{NewDate(2025, 6, 8), UrgencyUrgent},   // 7 days
		{NewDate(2025, 6, 9), UrgencyUpcoming}, // 8 days
		{NewDate(2025, 7, 1), UrgencyUpcoming}, // 30 days
		{NewDate(2025, 7, 2), UrgencyNormal},   // 31 days
	}
	for i, tc := range cases {
		g := Goal{Target: Money{Cents: 100}, Deadline: tc.deadline}
		if got := Analyze(g, asOf).Urgency; got != tc.want {
			t.Fatalf("case %d expected %s, got %s", i, tc.want, got)
		}
	}
}

func TestContributionShare(t *testing.T) {
	g := testGoal()
	share := ContributionShare(g, g.Contributions[0])
	if share != 100 {
		t.Fatalf("expected 100%%, got %v", share)
	}
	if got := ContributionShare(Goal{}, Contribution{Amount: Money{Cents: 100}}); got != 0 {
		t.Fatalf("expected 0 share on empty ledger, got %v", got)
	}
}
