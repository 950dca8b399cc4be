package core

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyUpcoming Urgency = "upcoming" // deadline within 30 days
	UrgencyUrgent   Urgency = "urgent"   // deadline within 7 days
	UrgencyOverdue  Urgency = "overdue"
)

type (
	Urgency string

	// ParticipantStats is the per-participant slice of a goal's ledger.
	ParticipantStats struct {
		Name           string
		Contributed    Money
		Contributions  int
		HasContributed bool
	}

	// GoalStats is the derived read-side view of a single goal.
	GoalStats struct {
		ProgressPct        float64
		DaysLeft           int
		Urgency            Urgency
		Remaining          Money
		TotalContributors  int
		ActiveContributors int
		AvgContribution    Money
		Participants       []ParticipantStats
	}
)

// Analyze derives per-goal statistics as of an explicit date. The date is
// a parameter rather than a wall-clock read so results are deterministic.
func Analyze(g Goal, asOf Date) GoalStats {
	stats := GoalStats{
		DaysLeft:          g.Deadline.DaysUntil(asOf),
		Remaining:         g.Remaining(),
		TotalContributors: len(g.Participants),
	}

	if g.Target.Cents > 0 {
		pct := float64(g.Current.Cents) / float64(g.Target.Cents) * 100
		if pct > 100 {
			// The validator keeps current at or below target on the normal
			// path; clamp anyway for out-of-band data.
			pct = 100
		}
		stats.ProgressPct = pct
	}
	stats.Urgency = classifyUrgency(stats.DaysLeft)

	names := make(map[string]struct{}, len(g.Contributions))
	for _, c := range g.Contributions {
		names[c.Name] = struct{}{}
	}
	// Distinct contribution names, not participant identities: a name
	// outside the participant list still counts as active.
	stats.ActiveContributors = len(names)

	if n := int64(len(g.Contributions)); n > 0 {
		stats.AvgContribution = Money{Cents: g.Current.Cents / n}
	}

	stats.Participants = make([]ParticipantStats, len(g.Participants))
	for i, p := range g.Participants {
		ps := ParticipantStats{Name: p.Name}
		for _, c := range g.Contributions {
			if c.Name == p.Name {
				ps.Contributed.Cents += c.Amount.Cents
				ps.Contributions++
			}
		}
		ps.HasContributed = ps.Contributions > 0
		stats.Participants[i] = ps
	}
	return stats
}

// ContributionShare returns the contribution's percentage of the goal's
// current total, 0 when nothing has been saved yet.
func ContributionShare(g Goal, c Contribution) float64 {
	if g.Current.Cents == 0 {
		return 0
	}
	return float64(c.Amount.Cents) / float64(g.Current.Cents) * 100
}

func classifyUrgency(daysLeft int) Urgency {
	switch {
	case daysLeft < 0:
		return UrgencyOverdue
	case daysLeft <= 7:
		return UrgencyUrgent
	case daysLeft <= 30:
		return UrgencyUpcoming
	default:
		return UrgencyNormal
	}
}
