// Package worker runs the out-of-process side of goal maintenance: it
// consumes contribution messages from the broker and reconciles goal
// strategies against them.
package worker

import (
	"context"
	"fmt"

	"fino/internal/amqp"
	"fino/internal/core"
	"fino/internal/log"
	"fino/internal/services"
)

// ReconcileWorker applies strategy reconciliation for recorded
// contributions.
type ReconcileWorker struct {
	goals  *services.GoalService
	logger *log.Logger
}

func NewReconcileWorker(goals *services.GoalService, logger *log.Logger) *ReconcileWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReconcileWorker{
		goals:  goals,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleContributionMessage processes a single reconcile message. A
// returned error makes the consumer nack-and-requeue, so only transient
// failures should propagate; a message that can never succeed is dropped
// with a log line instead.
func (w *ReconcileWorker) HandleContributionMessage(ctx context.Context, msg *amqp.ContributionRecordedMessage) error {
	if msg.GoalID == 0 || msg.Method == "" || msg.AmountCents <= 0 {
		w.logger.WarnContext(ctx, "dropping unusable reconcile message",
			log.FieldGoalID, msg.GoalID,
			log.FieldMethodName, msg.Method,
			log.FieldAmountCents, msg.AmountCents)
		return nil
	}

	w.logger.InfoContext(ctx, "reconciling strategy",
		log.FieldOperation, log.OpReconcile,
		log.FieldGoalID, msg.GoalID,
		log.FieldMethodName, msg.Method)

	if err := w.goals.ReconcileStrategy(ctx, msg.GoalID, msg.Method, core.Money{Cents: msg.AmountCents}); err != nil {
		return fmt.Errorf("reconcile goal %d: %w", msg.GoalID, err)
	}
	return nil
}
