package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ssu-portal/internal/domain"
	"github.com/spec-kit/ssu-portal/internal/events"
	"github.com/spec-kit/ssu-portal/internal/store"
)

// LifecycleService enforces the forward-only status transitions and maintains
// the audit trail. Operations are permissive filter-folds: tickets not in the
// required source status are silently left unmodified, and callers are
// expected to pre-filter and report eligible counts to the user.
type LifecycleService struct {
	store      *store.TicketStore
	dispatcher events.Dispatcher
}

// NewLifecycleService constructs the service.
func NewLifecycleService(ticketStore *store.TicketStore, dispatcher events.Dispatcher) *LifecycleService {
	return &LifecycleService{store: ticketStore, dispatcher: dispatcher}
}

// Assign moves Open tickets to Scheduled under the given manager. Returns the
// number of tickets actually updated.
func (s *LifecycleService) Assign(ctx context.Context, ids []string, manager string) int {
	idSet := toSet(ids)
	now := time.Now()
	updated := 0

	s.store.Apply(ctx, func(t domain.Ticket) domain.Ticket {
		if !idSet[t.ID] || t.Status != domain.TicketStatusOpen {
			return t
		}
		t.AssignedManager = manager
		t.AppendHistory(domain.TicketStatusScheduled, fmt.Sprintf("Alocado para %s", manager), now)
		updated++
		return t
	})

	s.publish(ctx, events.Event{
		Type:    events.EventTicketsAssigned,
		Payload: events.TicketsAssignedPayload{TicketIDs: ids, Manager: manager, Updated: updated},
	})
	return updated
}

// StartAttendance moves Scheduled tickets to InProgress and opens their SLA
// window.
func (s *LifecycleService) StartAttendance(ctx context.Context, ids []string) int {
	idSet := toSet(ids)
	now := time.Now()
	updated := 0

	s.store.Apply(ctx, func(t domain.Ticket) domain.Ticket {
		if !idSet[t.ID] || t.Status != domain.TicketStatusScheduled {
			return t
		}
		start := now
		t.SLAStartTime = &start
		t.AppendHistory(domain.TicketStatusInProgress, "Iniciado atendimento", now)
		updated++
		return t
	})

	s.publish(ctx, events.Event{
		Type:    events.EventAttendanceStarted,
		Payload: events.AttendanceStartedPayload{TicketIDs: ids, Updated: updated},
	})
	return updated
}

// CloseTickets moves InProgress tickets to Closed, stamps the SLA end and
// attaches attendance evidence. Notes and photos are only meaningful when a
// single ticket is being closed; batch closures carry them verbatim onto
// every matched ticket.
func (s *LifecycleService) CloseTickets(ctx context.Context, ids []string, notes string, photos []string) int {
	idSet := toSet(ids)
	now := time.Now()
	updated := 0

	historyNote := notes
	if historyNote == "" {
		historyNote = "Serviço concluído"
	}

	s.store.Apply(ctx, func(t domain.Ticket) domain.Ticket {
		if !idSet[t.ID] || t.Status != domain.TicketStatusInProgress {
			return t
		}
		end := now
		t.SLAEndTime = &end
		if notes != "" {
			t.Notes = notes
		}
		if len(photos) > 0 {
			t.Photos = photos
		}
		t.AppendHistory(domain.TicketStatusClosed, historyNote, now)
		updated++
		return t
	})

	s.publish(ctx, events.Event{
		Type:    events.EventTicketsClosed,
		Payload: events.TicketsClosedPayload{TicketIDs: ids, Updated: updated, HasPhotos: len(photos) > 0},
	})
	return updated
}

// MarkWrittenOff moves delivered tickets to the terminal WrittenOff status.
// Reached only from the delivery success path; SLA stamps and the assigned
// manager are untouched.
func (s *LifecycleService) MarkWrittenOff(ctx context.Context, ids []string) int {
	idSet := toSet(ids)
	now := time.Now()
	updated := 0

	s.store.Apply(ctx, func(t domain.Ticket) domain.Ticket {
		if !idSet[t.ID] || t.Status == domain.TicketStatusWrittenOff {
			return t
		}
		t.AppendHistory(domain.TicketStatusWrittenOff, "", now)
		updated++
		return t
	})

	s.publish(ctx, events.Event{
		Type:    events.EventTicketsWrittenOff,
		Payload: events.TicketsWrittenOffPayload{TicketIDs: ids, Updated: updated},
	})
	return updated
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
