package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ssu-portal/internal/events"
	"github.com/spec-kit/ssu-portal/internal/importer"
	"github.com/spec-kit/ssu-portal/internal/store"
)

// ImportService loads ticket batches from the municipality's CSV export into
// the store.
type ImportService struct {
	store      *store.TicketStore
	dispatcher events.Dispatcher
}

// NewImportService constructs the service.
func NewImportService(ticketStore *store.TicketStore, dispatcher events.Dispatcher) *ImportService {
	return &ImportService{store: ticketStore, dispatcher: dispatcher}
}

// ImportCSV parses the reader and appends the resulting tickets. Returns the
// number of tickets imported.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	tickets, err := importer.Parse(r)
	if err != nil {
		return 0, err
	}
	s.store.AddTickets(ctx, tickets)

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketsImported,
			Timestamp: time.Now(),
			Payload:   events.TicketsImportedPayload{Count: len(tickets)},
		})
	}
	return len(tickets), nil
}
