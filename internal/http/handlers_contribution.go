package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"stokvel/internal/core"
	"stokvel/internal/ledger"
	applog "stokvel/internal/log"
	"stokvel/internal/metrics"
	"stokvel/internal/services"
)

type contributionRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

func (s *Server) handleCreateContribution(w http.ResponseWriter, r *http.Request) {
	id, ok := parseGoalID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_goal_id", "goal id must be a positive integer")
		return
	}

	var req contributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Amount = strings.TrimSpace(req.Amount)
	req.Date = strings.TrimSpace(req.Date)

	if req.Name == "" || req.Amount == "" || req.Date == "" {
		metrics.RecordValidationRejection("missing_field")
		writeError(w, http.StatusBadRequest, "missing_field", "name, amount and date are required")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		metrics.RecordValidationRejection("invalid_amount")
		writeError(w, http.StatusBadRequest, "invalid_amount", "amount must be a positive decimal")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		metrics.RecordValidationRejection("invalid_date")
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted as 2006-01-02")
		return
	}

	proposed := core.ProposedContribution{
		Name:   req.Name,
		Amount: core.Money{Cents: cents},
		Date:   date,
	}

	goal, contribution, err := s.contributions.RecordContribution(r.Context(), id, proposed)
	if err != nil {
		s.writeContributionError(w, r, id, err)
		return
	}

	metrics.RecordContribution()
	if goal.Status == core.StatusCompleted {
		metrics.RecordGoalCompleted()
	}
	s.invalidateReadCaches()

	s.structLog.LogContributionRecorded(r.Context(), id, contribution.ID,
		contribution.Name, contribution.Amount.Cents)

	writeJSON(w, http.StatusCreated, contributionResultView{
		Contribution: toContributionView(goal, contribution),
		Goal:         toGoalView(goal),
	})
}

func (s *Server) writeContributionError(w http.ResponseWriter, r *http.Request, goalID int64, err error) {
	var exceeds *core.ExceedsRemainingError

	switch {
	case errors.Is(err, ledger.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, "goal_not_found", "goal not found")
	case errors.Is(err, core.ErrMissingField):
		metrics.RecordValidationRejection("missing_field")
		writeError(w, http.StatusBadRequest, "missing_field", "name, amount and date are required")
	case errors.Is(err, core.ErrInvalidAmount):
		metrics.RecordValidationRejection("invalid_amount")
		writeError(w, http.StatusBadRequest, "invalid_amount", "amount must be greater than zero")
	case errors.As(err, &exceeds):
		metrics.RecordValidationRejection("exceeds_remaining")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: errorBody{
			Code:      "exceeds_remaining",
			Message:   err.Error(),
			Remaining: exceeds.Remaining.DecimalString(),
		}})
	default:
		fields := applog.NewFields()
		fields[applog.FieldGoalID] = goalID
		s.structLog.LogError(r.Context(), "Failed to record contribution", err,
			applog.ComponentHTTP, applog.OpApply, fields)
		writeError(w, http.StatusInternalServerError, "storage_error", "failed to record contribution")
	}
}

func (s *Server) handleCompleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseGoalID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_goal_id", "goal id must be a positive integer")
		return
	}

	asOf, ok := parseAsOf(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_date", "as_of must be formatted as 2006-01-02")
		return
	}

	goal, err := s.contributions.CompleteGoal(r.Context(), id, asOf)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrGoalNotFound):
			writeError(w, http.StatusNotFound, "goal_not_found", "goal not found")
		case errors.Is(err, services.ErrNotReady):
			writeError(w, http.StatusConflict, "not_ready", "goal has not reached its target")
		default:
			slog.ErrorContext(r.Context(), "Failed to complete goal", "goal_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "storage_error", "failed to complete goal")
		}
		return
	}

	metrics.RecordGoalCompleted()
	s.invalidateReadCaches()

	writeJSON(w, http.StatusOK, toGoalView(goal))
}
