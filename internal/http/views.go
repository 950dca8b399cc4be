package http

import (
	"stokvel/internal/core"
)

// moneyView renders an amount as machine-readable cents plus a display
// string in rand.
type moneyView struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func money(m core.Money) moneyView {
	return moneyView{Cents: m.Cents, Formatted: "R" + m.DecimalString()}
}

type participantView struct {
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type contributionView struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Amount moneyView `json:"amount"`
	Date   string    `json:"date"`
	Share  float64   `json:"share"`
}

type goalView struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	Target        moneyView          `json:"target"`
	Current       moneyView          `json:"current"`
	Deadline      string             `json:"deadline,omitempty"`
	Status        string             `json:"status"`
	CreatedDate   string             `json:"created_date,omitempty"`
	CompletedDate string             `json:"completed_date,omitempty"`
	Category      string             `json:"category,omitempty"`
	Priority      string             `json:"priority,omitempty"`
	Participants  []participantView  `json:"participants"`
	Contributions []contributionView `json:"contributions"`
}

type participantStatsView struct {
	Name           string    `json:"name"`
	Contributed    moneyView `json:"contributed"`
	Contributions  int       `json:"contributions"`
	HasContributed bool      `json:"has_contributed"`
}

type statsView struct {
	ProgressPct        float64                `json:"progress_pct"`
	DaysLeft           int                    `json:"days_left"`
	Urgency            string                 `json:"urgency"`
	Remaining          moneyView              `json:"remaining"`
	TotalContributors  int                    `json:"total_contributors"`
	ActiveContributors int                    `json:"active_contributors"`
	AvgContribution    moneyView              `json:"avg_contribution"`
	Participants       []participantStatsView `json:"participants"`
}

type goalDetailView struct {
	Goal  goalView  `json:"goal"`
	Stats statsView `json:"stats"`
	AsOf  string    `json:"as_of"`
}

type suggestionView struct {
	EqualSplit moneyView `json:"equal_split"`
	Half       moneyView `json:"half"`
	Full       moneyView `json:"full"`
}

type timelinePointView struct {
	Date        string    `json:"date"`
	Cumulative  moneyView `json:"cumulative"`
	Amount      moneyView `json:"amount"`
	Contributor string    `json:"contributor"`
}

type contributorTotalView struct {
	Name  string    `json:"name"`
	Total moneyView `json:"total"`
}

type totalsView struct {
	TotalSaved         moneyView `json:"total_saved"`
	TotalTargeted      moneyView `json:"total_targeted"`
	TotalContributions int       `json:"total_contributions"`
	CompletedCount     int       `json:"completed_count"`
	ActiveCount        int       `json:"active_count"`
}

type upcomingDeadlineView struct {
	GoalID    int64     `json:"goal_id"`
	Name      string    `json:"name"`
	Deadline  string    `json:"deadline"`
	DaysLeft  int       `json:"days_left"`
	Urgency   string    `json:"urgency"`
	Remaining moneyView `json:"remaining"`
}

type historyView struct {
	AsOf              string                 `json:"as_of"`
	Totals            totalsView             `json:"totals"`
	TopContributors   []contributorTotalView `json:"top_contributors"`
	UpcomingDeadlines []upcomingDeadlineView `json:"upcoming_deadlines"`
}

type contributionResultView struct {
	Contribution contributionView `json:"contribution"`
	Goal         goalView         `json:"goal"`
}

func toGoalView(g core.Goal) goalView {
	v := goalView{
		ID:            g.ID,
		Name:          g.Name,
		Target:        money(g.Target),
		Current:       money(g.Current),
		Deadline:      g.Deadline.ISO(),
		Status:        string(g.Status),
		CreatedDate:   g.CreatedDate.ISO(),
		CompletedDate: g.CompletedDate.ISO(),
		Category:      g.Category,
		Priority:      g.Priority,
		Participants:  make([]participantView, 0, len(g.Participants)),
		Contributions: make([]contributionView, 0, len(g.Contributions)),
	}
	for _, p := range g.Participants {
		v.Participants = append(v.Participants, participantView{
			Name:   p.Name,
			Role:   p.Role,
			Avatar: p.Avatar,
		})
	}
	for _, c := range g.Contributions {
		v.Contributions = append(v.Contributions, toContributionView(g, c))
	}
	return v
}

func toContributionView(g core.Goal, c core.Contribution) contributionView {
	return contributionView{
		ID:     c.ID,
		Name:   c.Name,
		Amount: money(c.Amount),
		Date:   c.Date.ISO(),
		Share:  core.ContributionShare(g, c),
	}
}

func toStatsView(stats core.GoalStats) statsView {
	v := statsView{
		ProgressPct:        stats.ProgressPct,
		DaysLeft:           stats.DaysLeft,
		Urgency:            string(stats.Urgency),
		Remaining:          money(stats.Remaining),
		TotalContributors:  stats.TotalContributors,
		ActiveContributors: stats.ActiveContributors,
		AvgContribution:    money(stats.AvgContribution),
		Participants:       make([]participantStatsView, 0, len(stats.Participants)),
	}
	for _, p := range stats.Participants {
		v.Participants = append(v.Participants, participantStatsView{
			Name:           p.Name,
			Contributed:    money(p.Contributed),
			Contributions:  p.Contributions,
			HasContributed: p.HasContributed,
		})
	}
	return v
}

func toSuggestionView(s core.Suggestion) suggestionView {
	return suggestionView{
		EqualSplit: money(s.EqualSplit),
		Half:       money(s.Half),
		Full:       money(s.Full),
	}
}

func toHistoryView(goals []core.Goal, asOf core.Date, limit int) historyView {
	totals := core.ComputeTotals(goals)
	view := historyView{
		AsOf: asOf.ISO(),
		Totals: totalsView{
			TotalSaved:         money(totals.TotalSaved),
			TotalTargeted:      money(totals.TotalTargeted),
			TotalContributions: totals.TotalContributions,
			CompletedCount:     totals.CompletedCount,
			ActiveCount:        totals.ActiveCount,
		},
		TopContributors:   make([]contributorTotalView, 0),
		UpcomingDeadlines: make([]upcomingDeadlineView, 0),
	}

	for _, ct := range core.AllTimeTopContributors(goals, limit) {
		view.TopContributors = append(view.TopContributors, contributorTotalView{
			Name:  ct.Name,
			Total: money(ct.Total),
		})
	}

	for _, g := range core.UpcomingDeadlines(goals, asOf) {
		stats := core.Analyze(g, asOf)
		view.UpcomingDeadlines = append(view.UpcomingDeadlines, upcomingDeadlineView{
			GoalID:    g.ID,
			Name:      g.Name,
			Deadline:  g.Deadline.ISO(),
			DaysLeft:  stats.DaysLeft,
			Urgency:   string(stats.Urgency),
			Remaining: money(stats.Remaining),
		})
	}

	return view
}
