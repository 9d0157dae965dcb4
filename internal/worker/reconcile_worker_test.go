package worker

import (
	"context"
	"errors"
	"testing"

	"fino/internal/amqp"
	"fino/internal/core"
	"fino/internal/services"
)

type fakeGoalAPI struct {
	goal    core.Goal
	goalErr error
	created []core.StrategyItem
	updated []core.StrategyItem
}

func (f *fakeGoalAPI) Goal(ctx context.Context, id int64) (core.Goal, error) {
	return f.goal, f.goalErr
}

func (f *fakeGoalAPI) CreateContribution(ctx context.Context, c core.Contribution) (core.Contribution, error) {
	return c, nil
}

func (f *fakeGoalAPI) CreateStrategyItem(ctx context.Context, item core.StrategyItem) (core.StrategyItem, error) {
	f.created = append(f.created, item)
	return item, nil
}

func (f *fakeGoalAPI) UpdateStrategyItem(ctx context.Context, item core.StrategyItem) (core.StrategyItem, error) {
	f.updated = append(f.updated, item)
	return item, nil
}

func TestHandleContributionMessage(t *testing.T) {
	api := &fakeGoalAPI{goal: core.Goal{
		ID: 7,
		StrategyItems: []core.StrategyItem{
			{ID: 1, GoalID: 7, Method: "Bonus", MonthlyContribution: core.Money{Cents: 1000}},
		},
	}}
	w := NewReconcileWorker(services.NewGoalService(api, nil, nil), nil)

	msg := &amqp.ContributionRecordedMessage{GoalID: 7, ContributionID: 1, Method: "bonus", AmountCents: 5000}
	if err := w.HandleContributionMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleContributionMessage() error: %v", err)
	}
	if len(api.updated) != 1 || api.updated[0].MonthlyContribution.Cents != 5000 {
		t.Errorf("expected a raised strategy item, got %+v", api.updated)
	}
}

func TestHandleContributionMessageDropsUnusable(t *testing.T) {
	api := &fakeGoalAPI{}
	w := NewReconcileWorker(services.NewGoalService(api, nil, nil), nil)

	tests := []struct {
		name string
		msg  *amqp.ContributionRecordedMessage
	}{
		{name: "missing goal", msg: &amqp.ContributionRecordedMessage{Method: "Bonus", AmountCents: 100}},
		{name: "missing method", msg: &amqp.ContributionRecordedMessage{GoalID: 7, AmountCents: 100}},
		{name: "non-positive amount", msg: &amqp.ContributionRecordedMessage{GoalID: 7, Method: "Bonus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := w.HandleContributionMessage(context.Background(), tt.msg); err != nil {
				t.Errorf("unusable message must be dropped, not requeued: %v", err)
			}
		})
	}
	if len(api.created)+len(api.updated) != 0 {
		t.Error("unusable messages must not touch the API")
	}
}

func TestHandleContributionMessageRequeuesOnAPIError(t *testing.T) {
	api := &fakeGoalAPI{goalErr: errors.New("temporarily down")}
	w := NewReconcileWorker(services.NewGoalService(api, nil, nil), nil)

	msg := &amqp.ContributionRecordedMessage{GoalID: 7, ContributionID: 1, Method: "Bonus", AmountCents: 5000}
	if err := w.HandleContributionMessage(context.Background(), msg); err == nil {
		t.Fatal("transient API failure must propagate so the message requeues")
	}
}
