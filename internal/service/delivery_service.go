package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ssu-portal/internal/config"
	"github.com/spec-kit/ssu-portal/internal/events"
	"github.com/spec-kit/ssu-portal/internal/repository"
	"github.com/spec-kit/ssu-portal/internal/store"
	"github.com/spec-kit/ssu-portal/internal/webhook"
)

// DeliveryResult is the structured outcome the caller renders.
type DeliveryResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeliveryService pushes tickets to the external sink strictly in input
// order, one in flight at a time, honoring the optional per-ticket callback
// confirmation. On full success the whole batch transitions to WrittenOff in
// a single call; any hard failure aborts the batch with nothing committed.
type DeliveryService struct {
	store         *store.TicketStore
	lifecycle     *LifecycleService
	settings      repository.SettingsRepository
	sink          *webhook.SinkClient
	confirmations *webhook.ConfirmationHub
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	cfg           config.DeliveryConfig

	inFlight atomic.Bool
}

// DeliveryDependencies bundles collaborators for the delivery service.
type DeliveryDependencies struct {
	Store         *store.TicketStore
	Lifecycle     *LifecycleService
	Settings      repository.SettingsRepository
	Sink          *webhook.SinkClient
	Confirmations *webhook.ConfirmationHub
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewDeliveryService constructs the service.
func NewDeliveryService(cfg config.DeliveryConfig, deps DeliveryDependencies) *DeliveryService {
	return &DeliveryService{
		store:         deps.Store,
		lifecycle:     deps.Lifecycle,
		settings:      deps.Settings,
		sink:          deps.Sink,
		confirmations: deps.Confirmations,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		cfg:           cfg,
	}
}

// InFlight reports whether a batch is currently being delivered. The flag is
// advisory; callers check it to keep a second batch from starting.
func (s *DeliveryService) InFlight() bool {
	return s.inFlight.Load()
}

// Deliver sends the tickets to the sink in the given order. See the service
// doc for the abort and commit semantics.
func (s *DeliveryService) Deliver(ctx context.Context, ids []string) DeliveryResult {
	if !s.inFlight.CompareAndSwap(false, true) {
		return DeliveryResult{Success: false, Error: "Já existe um envio em andamento"}
	}
	defer s.inFlight.Store(false)

	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load integration settings", zap.Error(err))
		return s.fail("", "", "Não foi possível carregar as configurações de integração")
	}
	if settings.WebhookURL == "" {
		s.logger.Warn("webhook URL not configured")
		return s.fail("", "", "URL do webhook não configurada")
	}

	successfulIDs := make([]string, 0, len(ids))

	for i, ticketID := range ids {
		ticket, ok := s.store.Get(ticketID)
		if !ok {
			// should not occur under correct caller filtering
			s.logger.Warn("ticket not found, skipping", zap.String("ticket_id", ticketID))
			continue
		}

		s.logger.Info("sending ticket to webhook",
			zap.String("os_number", ticket.OSNumber),
			zap.Int("position", i+1),
			zap.Int("total", len(ids)))

		if err := s.sink.Send(ctx, settings.WebhookURL, ticket); err != nil {
			s.logger.Error("webhook send failed", zap.String("os_number", ticket.OSNumber), zap.Error(err))
			return s.fail(ticket.ID, ticket.OSNumber, fmt.Sprintf("Falha no envio: %v", err))
		}

		if settings.CallbackURL != "" && i < len(ids)-1 {
			status, err := s.confirmations.Await(ctx, ticket.ID, s.cfg.ConfirmTimeout())
			if err != nil {
				s.logger.Error("confirmation wait failed", zap.String("os_number", ticket.OSNumber), zap.Error(err))
				return s.fail(ticket.ID, ticket.OSNumber,
					fmt.Sprintf("Sem confirmação para o chamado %s. Acione o administrador do sistema.", ticket.OSNumber))
			}
			if status == webhook.ConfirmationNOK {
				return s.fail(ticket.ID, ticket.OSNumber,
					fmt.Sprintf("Erro no processamento do chamado %s. Acione o administrador do sistema.", ticket.OSNumber))
			}
		}

		successfulIDs = append(successfulIDs, ticket.ID)

		if i < len(ids)-1 {
			select {
			case <-time.After(s.cfg.InterItemDelay()):
			case <-ctx.Done():
				return s.fail(ticket.ID, ticket.OSNumber, "Envio interrompido")
			}
		}
	}

	if len(successfulIDs) > 0 {
		s.lifecycle.MarkWrittenOff(ctx, successfulIDs)
	}
	return DeliveryResult{Success: true}
}

func (s *DeliveryService) fail(ticketID, osNumber, reason string) DeliveryResult {
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(context.Background(), events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventDeliveryFailed,
			Timestamp: time.Now(),
			Payload:   events.DeliveryFailedPayload{TicketID: ticketID, OSNumber: osNumber, Reason: reason},
		})
	}
	return DeliveryResult{Success: false, Error: reason}
}
