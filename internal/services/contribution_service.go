package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stokvel/internal/core"
	"stokvel/internal/ledger"
)

// SyncPublisher publishes export sync messages for recorded contributions.
type SyncPublisher interface {
	PublishContributionSync(ctx context.Context, goalID, contributionID int64) error
}

// CompletionPolicy controls whether a goal that reaches its target is
// marked completed as part of recording the contribution. Completion is
// otherwise an explicit operation.
type CompletionPolicy struct {
	AutoComplete bool
}

// ContributionService orchestrates contribution recording across the
// goal store and AMQP.
type ContributionService struct {
	store     ledger.GoalStore
	publisher SyncPublisher
	policy    CompletionPolicy
}

func NewContributionService(store ledger.GoalStore, publisher SyncPublisher, policy CompletionPolicy) *ContributionService {
	return &ContributionService{
		store:     store,
		publisher: publisher,
		policy:    policy,
	}
}

// RecordContribution validates and applies a contribution to the goal,
// persists the result, and publishes an export sync message. Publish
// failures are logged but do not fail the request.
func (s *ContributionService) RecordContribution(ctx context.Context, goalID int64, p core.ProposedContribution) (core.Goal, core.Contribution, error) {
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return core.Goal{}, core.Contribution{}, fmt.Errorf("load goal %d: %w", goalID, err)
	}

	// Outside contributors are accepted; the mismatch is only logged.
	if err := core.CheckParticipant(goal, p.Name); err != nil {
		slog.WarnContext(ctx, "Contribution from non-participant",
			"goal_id", goalID, "contributor", p.Name)
	}

	updated, contribution, err := core.Apply(goal, p)
	if err != nil {
		return core.Goal{}, core.Contribution{}, err
	}

	if s.policy.AutoComplete && updated.ReadyToComplete() {
		updated = complete(updated, contribution.Date)
	}

	if err := s.store.ReplaceGoal(ctx, updated); err != nil {
		return core.Goal{}, core.Contribution{}, fmt.Errorf("save goal %d: %w", goalID, err)
	}

	if err := s.publishSyncMessage(ctx, goalID, contribution.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"goal_id", goalID, "contribution_id", contribution.ID, "error", err)
		// Don't fail the request - the contribution is saved locally
	}

	return updated, contribution, nil
}

// ErrNotReady is returned by CompleteGoal when the goal has not reached
// its target.
var ErrNotReady = errors.New("goal has not reached its target")

// CompleteGoal marks a goal completed once its target is reached.
func (s *ContributionService) CompleteGoal(ctx context.Context, goalID int64, asOf core.Date) (core.Goal, error) {
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load goal %d: %w", goalID, err)
	}

	if goal.Status == core.StatusCompleted {
		return goal, nil
	}
	if !goal.ReadyToComplete() {
		return core.Goal{}, ErrNotReady
	}

	updated := complete(goal, asOf)
	if err := s.store.ReplaceGoal(ctx, updated); err != nil {
		return core.Goal{}, fmt.Errorf("save goal %d: %w", goalID, err)
	}

	slog.InfoContext(ctx, "Goal completed",
		"goal_id", goalID, "completed_date", updated.CompletedDate.ISO())

	return updated, nil
}

func complete(g core.Goal, asOf core.Date) core.Goal {
	g.Status = core.StatusCompleted
	g.CompletedDate = asOf
	return g
}

func (s *ContributionService) publishSyncMessage(ctx context.Context, goalID, contributionID int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.publisher.PublishContributionSync(ctx, goalID, contributionID)
}
