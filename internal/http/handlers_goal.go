package http

import (
	"errors"
	"net/http"

	"stokvel/internal/core"
	"stokvel/internal/ledger"
	applog "stokvel/internal/log"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.source.ListGoals(r.Context())
	if err != nil {
		s.structLog.LogError(r.Context(), "Failed to list goals", err,
			applog.ComponentHTTP, applog.OpList, applog.NewFields())
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load goals")
		return
	}

	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, toGoalView(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": views})
}

func (s *Server) handleGoalDetail(w http.ResponseWriter, r *http.Request) {
	goal, ok := s.loadGoal(w, r, applog.OpAnalyze)
	if !ok {
		return
	}

	asOf, ok := parseAsOf(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_date", "as_of must be formatted as 2006-01-02")
		return
	}

	stats := core.Analyze(goal, asOf)
	writeJSON(w, http.StatusOK, goalDetailView{
		Goal:  toGoalView(goal),
		Stats: toStatsView(stats),
		AsOf:  asOf.ISO(),
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	goal, ok := s.loadGoal(w, r, applog.OpSuggest)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionView(core.Suggest(goal)))
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	goal, ok := s.loadGoal(w, r, applog.OpAnalyze)
	if !ok {
		return
	}

	points := core.Timeline(goal)
	views := make([]timelinePointView, 0, len(points))
	for _, p := range points {
		views = append(views, timelinePointView{
			Date:        p.Date.ISO(),
			Cumulative:  money(p.Cumulative),
			Amount:      money(p.Amount),
			Contributor: p.Contributor,
		})
	}

	tops := make([]contributorTotalView, 0)
	for _, ct := range core.TopContributors(goal) {
		tops = append(tops, contributorTotalView{Name: ct.Name, Total: money(ct.Total)})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"goal_id":          goal.ID,
		"timeline":         views,
		"top_contributors": tops,
	})
}

func (s *Server) loadGoal(w http.ResponseWriter, r *http.Request, op string) (core.Goal, bool) {
	id, ok := parseGoalID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_goal_id", "goal id must be a positive integer")
		return core.Goal{}, false
	}

	goal, err := s.source.GetGoal(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrGoalNotFound) {
			writeError(w, http.StatusNotFound, "goal_not_found", "goal not found")
			return core.Goal{}, false
		}
		fields := applog.NewFields()
		fields[applog.FieldGoalID] = id
		s.structLog.LogError(r.Context(), "Failed to load goal", err, applog.ComponentHTTP, op, fields)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load goal")
		return core.Goal{}, false
	}

	return goal, true
}
