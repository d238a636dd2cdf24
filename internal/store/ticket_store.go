package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ssu-portal/internal/domain"
	"github.com/spec-kit/ssu-portal/internal/repository"
)

// SchemaVersion gates the persisted snapshot. A stored snapshot with a
// different version is discarded wholesale; there is no partial upgrade path.
const SchemaVersion = "2.0"

// TicketStore owns the canonical ticket collection. All reads get copies and
// all mutations go through AddTickets or Apply, which replace the collection
// in a single step and mirror it to the snapshot side-channel.
type TicketStore struct {
	mu        sync.RWMutex
	tickets   []domain.Ticket
	snapshots repository.SnapshotRepository
	logger    *zap.Logger
}

// NewTicketStore constructs an empty store backed by the given side-channel.
func NewTicketStore(snapshots repository.SnapshotRepository, logger *zap.Logger) *TicketStore {
	return &TicketStore{snapshots: snapshots, logger: logger}
}

// Load reads the persisted snapshot. A version mismatch discards all persisted
// tickets and starts empty.
func (s *TicketStore) Load(ctx context.Context) error {
	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot == nil {
		s.tickets = nil
		return nil
	}
	if snapshot.Version != SchemaVersion {
		s.logger.Warn("snapshot schema version mismatch; discarding persisted tickets",
			zap.String("stored", snapshot.Version),
			zap.String("current", SchemaVersion))
		s.tickets = nil
		s.persistLocked(ctx)
		return nil
	}

	s.tickets = append(s.tickets[:0:0], snapshot.Tickets...)
	s.logger.Info("tickets loaded", zap.Int("count", len(s.tickets)))
	return nil
}

// All returns a copy of the collection.
func (s *TicketStore) All() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Ticket{}, s.tickets...)
}

// Get looks up a ticket by id.
func (s *TicketStore) Get(id string) (domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ticket := range s.tickets {
		if ticket.ID == id {
			return ticket, true
		}
	}
	return domain.Ticket{}, false
}

// Count returns the number of tickets held.
func (s *TicketStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

// AddTickets appends new tickets and persists the full set.
func (s *TicketStore) AddTickets(ctx context.Context, newTickets []domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = append(s.tickets, newTickets...)
	s.persistLocked(ctx)
}

// Apply replaces the collection with the result of folding fn over every
// ticket, then persists the full set. Readers observe either the pre- or
// post-update collection, never a partial one.
func (s *TicketStore) Apply(ctx context.Context, fn func(domain.Ticket) domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := make([]domain.Ticket, len(s.tickets))
	for i, ticket := range s.tickets {
		updated[i] = fn(ticket)
	}
	s.tickets = updated
	s.persistLocked(ctx)
}

// persistLocked mirrors the collection to the side-channel with photos
// stripped. Failures are logged only; the in-memory state stays authoritative
// for the session.
func (s *TicketStore) persistLocked(ctx context.Context) {
	sanitized := make([]domain.Ticket, len(s.tickets))
	for i, ticket := range s.tickets {
		sanitized[i] = ticket.WithoutPhotos()
	}
	snapshot := &repository.Snapshot{Version: SchemaVersion, Tickets: sanitized}
	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		s.logger.Error("failed to persist ticket snapshot", zap.Error(err), zap.Int("count", len(sanitized)))
	}
}
