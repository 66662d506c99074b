package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/infra/events"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/port"
)

// notifier publishes result events. Publishing is best effort: a failure is
// logged and counted but never fails the operation that produced the result.
type notifier struct {
	publisher port.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func (n notifier) notify(ctx context.Context, kind, userID, resultID string, now time.Time) {
	if n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(ctx, events.NewEvent(kind, userID, resultID, now)); err != nil {
		n.logger.Warn("failed to publish result event",
			zap.String("kind", kind),
			zap.String("result_id", resultID),
			zap.Error(err),
		)
		n.metrics.IncrEvent("error")
		return
	}
	n.metrics.IncrEvent("ok")
}
