package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"stokvel/internal/core"
	applog "stokvel/internal/log"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseAsOf(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_date", "as_of must be formatted as 2006-01-02")
		return
	}
	limit := parseLimit(r, core.DefaultTopContributors)

	cacheKey := fmt.Sprintf("history:%s:%d:gen%d", asOf.ISO(), limit, s.generation.Load())
	if view, found := s.historyCache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, view)
		return
	}

	goals, err := s.source.ListGoals(r.Context())
	if err != nil {
		s.structLog.LogError(r.Context(), "Failed to list goals for history", err,
			applog.ComponentHTTP, applog.OpAnalyze, applog.NewFields())
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load goals")
		return
	}

	view := toHistoryView(goals, asOf, limit)
	s.historyCache.Set(cacheKey, view)

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	goals, err := s.source.ListGoals(r.Context())
	if err != nil {
		s.structLog.LogError(r.Context(), "Failed to list goals for export", err,
			applog.ComponentHTTP, applog.OpExport, applog.NewFields())
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to load goals")
		return
	}

	body := core.RenderCSV(core.ExportRows(goals))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="goals-export.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write CSV export", "error", err)
	}
}
