package core

import "sort"

// DefaultTopContributors is the ranking size used when the caller does
// not ask for a specific limit.
const DefaultTopContributors = 5

type (
	// Totals aggregates the whole goal collection. Order-independent.
	Totals struct {
		TotalSaved         Money
		TotalTargeted      Money
		TotalContributions int
		CompletedCount     int
		ActiveCount        int
	}

	// TimelinePoint is one step of a goal's cumulative contribution
	// timeline.
	TimelinePoint struct {
		Date        Date
		Cumulative  Money
		Amount      Money
		Contributor string
	}

	// ContributorTotal pairs a contributor name with an accumulated
	// amount.
	ContributorTotal struct {
		Name  string
		Total Money
	}
)

// ComputeTotals sums saved/targeted amounts and counts contributions and
// goal states across the collection.
func ComputeTotals(goals []Goal) Totals {
	var t Totals
	for _, g := range goals {
		t.TotalSaved.Cents += g.Current.Cents
		t.TotalTargeted.Cents += g.Target.Cents
		t.TotalContributions += len(g.Contributions)
		switch g.Status {
		case StatusCompleted:
			t.CompletedCount++
		case StatusActive:
			t.ActiveCount++
		}
	}
	return t
}

// Timeline returns the goal's contributions in chronological order with a
// running cumulative sum. The sort is stable: equal dates keep insertion
// order. Pure function of one goal, recomputed per call.
func Timeline(g Goal) []TimelinePoint {
	sorted := append([]Contribution(nil), g.Contributions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	points := make([]TimelinePoint, len(sorted))
	var cumulative int64
	for i, c := range sorted {
		cumulative += c.Amount.Cents
		points[i] = TimelinePoint{
			Date:        c.Date,
			Cumulative:  Money{Cents: cumulative},
			Amount:      c.Amount,
			Contributor: c.Name,
		}
	}
	return points
}

// ContributorTotals folds one goal's contributions into a name-keyed
// total. Map iteration order is unspecified; use TopContributors for an
// ordered view.
func ContributorTotals(g Goal) map[string]Money {
	totals := make(map[string]Money)
	for _, c := range g.Contributions {
		m := totals[c.Name]
		m.Cents += c.Amount.Cents
		totals[c.Name] = m
	}
	return totals
}

// TopContributors ranks one goal's contributors by total, descending.
// Ties keep first-seen accumulation order.
func TopContributors(g Goal) []ContributorTotal {
	return rankContributors([]Goal{g}, 0)
}

// AllTimeTopContributors ranks contributors across all goals by total
// amount, descending, truncated to limit. A limit <= 0 falls back to
// DefaultTopContributors. Ties keep first-seen accumulation order; this
// is an explicit tie-break, not an accident of sort stability.
func AllTimeTopContributors(goals []Goal, limit int) []ContributorTotal {
	if limit <= 0 {
		limit = DefaultTopContributors
	}
	return rankContributors(goals, limit)
}

func rankContributors(goals []Goal, limit int) []ContributorTotal {
	index := make(map[string]int)
	var ranked []ContributorTotal
	for _, g := range goals {
		for _, c := range g.Contributions {
			i, ok := index[c.Name]
			if !ok {
				i = len(ranked)
				index[c.Name] = i
				ranked = append(ranked, ContributorTotal{Name: c.Name})
			}
			ranked[i].Total.Cents += c.Amount.Cents
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total.Cents > ranked[j].Total.Cents
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// UpcomingDeadlines returns the active goals whose deadline falls within
// the next 30 days of asOf, in collection order.
func UpcomingDeadlines(goals []Goal, asOf Date) []Goal {
	var due []Goal
	for _, g := range goals {
		if g.Status != StatusActive {
			continue
		}
		days := g.Deadline.DaysUntil(asOf)
		if days > 0 && days <= 30 {
			due = append(due, g)
		}
	}
	return due
}

// CompletedDuration returns the days between a goal's creation and
// completion, or 0 when the goal has not been completed.
func CompletedDuration(g Goal) int {
	if g.CompletedDate.IsZero() {
		return 0
	}
	return g.CompletedDate.DaysUntil(g.CreatedDate)
}
