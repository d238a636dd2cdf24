package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ssu-portal/internal/domain"
	"github.com/spec-kit/ssu-portal/internal/events"
	"github.com/spec-kit/ssu-portal/internal/observability"
	"github.com/spec-kit/ssu-portal/internal/store"
)

// NotificationService reacts to domain events: it writes the operational log
// lines the dashboards rely on and keeps the per-status ticket gauges current.
type NotificationService struct {
	dispatcher events.Dispatcher
	store      *store.TicketStore
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, ticketStore *store.TicketStore, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		store:      ticketStore,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketsImported, n.handleMutation)
	n.dispatcher.Subscribe(events.EventTicketsAssigned, n.handleMutation)
	n.dispatcher.Subscribe(events.EventAttendanceStarted, n.handleMutation)
	n.dispatcher.Subscribe(events.EventTicketsClosed, n.handleMutation)
	n.dispatcher.Subscribe(events.EventTicketsWrittenOff, n.handleWrittenOff)
	n.dispatcher.Subscribe(events.EventDeliveryFailed, n.handleDeliveryFailed)
}

func (n *NotificationService) handleMutation(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.Any("payload", event.Payload))
	n.refreshGauges()
	return nil
}

func (n *NotificationService) handleWrittenOff(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.Any("payload", event.Payload))
	n.metrics.RecordDelivery(true)
	n.refreshGauges()
	return nil
}

func (n *NotificationService) handleDeliveryFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn(string(event.Type), zap.Any("payload", event.Payload))
	n.metrics.RecordDelivery(false)
	return nil
}

func (n *NotificationService) refreshGauges() {
	counts := map[domain.TicketStatus]int{
		domain.TicketStatusOpen:       0,
		domain.TicketStatusScheduled:  0,
		domain.TicketStatusInProgress: 0,
		domain.TicketStatusClosed:     0,
		domain.TicketStatusWrittenOff: 0,
	}
	for _, ticket := range n.store.All() {
		counts[ticket.Status]++
	}
	for status, count := range counts {
		n.metrics.SetTicketCount(string(status), count)
	}
}
