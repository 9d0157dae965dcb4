// Package services orchestrates multi-step goal operations across the
// remote API and the message broker.
package services

import (
	"context"
	"fmt"
	"strings"

	"fino/internal/core"
	"fino/internal/log"
)

// GoalAPI is the slice of the backend client goal operations need.
type GoalAPI interface {
	Goal(ctx context.Context, id int64) (core.Goal, error)
	CreateContribution(ctx context.Context, c core.Contribution) (core.Contribution, error)
	CreateStrategyItem(ctx context.Context, item core.StrategyItem) (core.StrategyItem, error)
	UpdateStrategyItem(ctx context.Context, item core.StrategyItem) (core.StrategyItem, error)
}

// ContributionPublisher hands reconciliation work to the broker so a
// worker picks it up out of the request path.
type ContributionPublisher interface {
	PublishContributionRecorded(ctx context.Context, goalID int64, contributionID int64, method string, amountCents int64) error
}

// GoalService records contributions and keeps goal strategies consistent
// with them.
type GoalService struct {
	api       GoalAPI
	publisher ContributionPublisher
	logger    *log.Logger
}

func NewGoalService(api GoalAPI, publisher ContributionPublisher, logger *log.Logger) *GoalService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &GoalService{
		api:       api,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentGoals),
	}
}

// AddContribution records a contribution durably, then updates the goal's
// strategy on a best-effort basis. The contribution is the source of
// truth: once the server has accepted it, no strategy failure rolls it
// back or fails the call.
func (s *GoalService) AddContribution(ctx context.Context, contrib core.Contribution, method string) (core.Contribution, error) {
	if err := contrib.Validate(); err != nil {
		return core.Contribution{}, err
	}

	saved, err := s.api.CreateContribution(ctx, contrib)
	if err != nil {
		return core.Contribution{}, fmt.Errorf("record contribution: %w", err)
	}

	method = strings.TrimSpace(method)
	if method == "" {
		return saved, nil
	}

	if s.publisher != nil {
		if err := s.publisher.PublishContributionRecorded(ctx, saved.GoalID, saved.ID, method, saved.Amount.Cents); err != nil {
			s.logger.WarnContext(ctx, "publish reconcile message failed, reconciling inline",
				log.FieldGoalID, saved.GoalID, log.FieldError, err.Error())
		} else {
			return saved, nil
		}
	}

	if err := s.ReconcileStrategy(ctx, saved.GoalID, method, saved.Amount); err != nil {
		s.logger.WarnContext(ctx, "strategy reconciliation failed, contribution kept",
			log.FieldGoalID, saved.GoalID,
			log.FieldMethodName, method,
			log.FieldError, err.Error())
	}
	return saved, nil
}

// StrategyAction is what a reconciliation plan decided to do.
type StrategyAction string

const (
	StrategyNone   StrategyAction = "none"
	StrategyCreate StrategyAction = "create"
	StrategyUpdate StrategyAction = "update"
)

// StrategyPlan is the outcome of planning a reconciliation: either
// nothing, a new item, or a raised monthly contribution on an existing
// one.
type StrategyPlan struct {
	Action StrategyAction
	Item   core.StrategyItem
}

// PlanStrategyReconciliation decides how a goal's strategy should change
// after a contribution via the named method. Matching is case-insensitive
// on the method label. An existing item's monthly contribution is only
// ever raised, never lowered; a missing method gets a new item appended
// after the existing ones.
func PlanStrategyReconciliation(g core.Goal, method string, monthly core.Money) StrategyPlan {
	method = strings.TrimSpace(method)
	if method == "" || monthly.Cents <= 0 {
		return StrategyPlan{Action: StrategyNone}
	}

	for _, item := range g.StrategyItems {
		if !strings.EqualFold(strings.TrimSpace(item.Method), method) {
			continue
		}
		if monthly.Cents <= item.MonthlyContribution.Cents {
			return StrategyPlan{Action: StrategyNone}
		}
		item.MonthlyContribution = monthly
		return StrategyPlan{Action: StrategyUpdate, Item: item}
	}

	return StrategyPlan{
		Action: StrategyCreate,
		Item: core.StrategyItem{
			GoalID:              g.ID,
			Method:              method,
			MonthlyContribution: monthly,
			Order:               len(g.StrategyItems),
		},
	}
}

// ReconcileStrategy fetches the goal's current strategy, plans the change
// and applies it.
func (s *GoalService) ReconcileStrategy(ctx context.Context, goalID int64, method string, monthly core.Money) error {
	goal, err := s.api.Goal(ctx, goalID)
	if err != nil {
		return fmt.Errorf("fetch goal %d: %w", goalID, err)
	}

	plan := PlanStrategyReconciliation(goal, method, monthly)
	switch plan.Action {
	case StrategyNone:
		return nil
	case StrategyCreate:
		if _, err := s.api.CreateStrategyItem(ctx, plan.Item); err != nil {
			return fmt.Errorf("create strategy item: %w", err)
		}
	case StrategyUpdate:
		if _, err := s.api.UpdateStrategyItem(ctx, plan.Item); err != nil {
			return fmt.Errorf("update strategy item: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "strategy reconciled",
		log.FieldOperation, log.OpReconcile,
		log.FieldGoalID, goalID,
		log.FieldMethodName, method,
		log.FieldAmountCents, monthly.Cents)
	return nil
}
