package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
)

// NotificationService routes ticket events to the escalation notifier off the request path.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   *EscalationNotifier
	pool       events.Submitter
	timeout    time.Duration
	logger     *zap.Logger
}

// NewNotificationService creates the service. Tasks run on pool with a per-task timeout.
func NewNotificationService(dispatcher events.Dispatcher, notifier *EscalationNotifier, pool events.Submitter, timeout time.Duration, logger *zap.Logger) *NotificationService {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		pool:       pool,
		timeout:    timeout,
		logger:     logger.Named("notification_service"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.handleTicketEscalated)
	n.dispatcher.Subscribe(events.EventTicketDoneByUIC, n.handleTicketDoneByUIC)
}

func (n *NotificationService) handleTicketEscalated(ctx context.Context, event events.Event) error {
	n.logger.Debug("TicketEscalated", zap.String("ticket_id", event.TicketID))
	n.enqueue(ctx, event, func(ctx context.Context) error {
		_, err := n.notifier.NotifyEscalation(ctx, event.TicketID, event.Actor.ID)
		return err
	})
	return nil
}

func (n *NotificationService) handleTicketDoneByUIC(ctx context.Context, event events.Event) error {
	n.logger.Debug("TicketDoneByUIC", zap.String("ticket_id", event.TicketID))
	n.enqueue(ctx, event, func(ctx context.Context) error {
		return n.notifier.NotifyDoneByUIC(ctx, event.TicketID, event.Actor.ID)
	})
	return nil
}

// enqueue detaches task from the request context and hands it to the pool.
func (n *NotificationService) enqueue(ctx context.Context, event events.Event, task func(context.Context) error) {
	base := context.WithoutCancel(ctx)
	err := n.pool.Submit(func() {
		taskCtx, cancel := context.WithTimeout(base, n.timeout)
		defer cancel()
		if err := task(taskCtx); err != nil {
			n.logger.Warn("notification task failed",
				zap.String("event_type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.Error(err))
		}
	})
	if err != nil {
		n.logger.Warn("notification task dropped",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
