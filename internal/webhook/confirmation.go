package webhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ConfirmationStatus is the sink's per-ticket verdict.
type ConfirmationStatus string

const (
	ConfirmationOK  ConfirmationStatus = "OK"
	ConfirmationNOK ConfirmationStatus = "NOK"
)

// ConfirmationHub correlates inbound callback signals with in-flight
// deliveries. The delivery loop registers a wait per ticket id; the callback
// endpoint resolves it.
type ConfirmationHub struct {
	mu      sync.Mutex
	pending map[string]chan ConfirmationStatus
	logger  *zap.Logger
}

// NewConfirmationHub constructs an empty hub.
func NewConfirmationHub(logger *zap.Logger) *ConfirmationHub {
	return &ConfirmationHub{
		pending: make(map[string]chan ConfirmationStatus),
		logger:  logger,
	}
}

// Await blocks until the sink confirms the ticket, the timeout elapses or the
// context is cancelled. A timeout is a defined failure, not an indefinite
// suspension.
func (h *ConfirmationHub) Await(ctx context.Context, ticketID string, timeout time.Duration) (ConfirmationStatus, error) {
	ch := make(chan ConfirmationStatus, 1)

	h.mu.Lock()
	h.pending[ticketID] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.pending, ticketID)
		h.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case status := <-ch:
		return status, nil
	case <-timer.C:
		return "", fmt.Errorf("confirmation wait for ticket %s timed out after %s", ticketID, timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Resolve delivers a confirmation to the waiter for the ticket. Signals with
// no registered waiter are dropped with a log line.
func (h *ConfirmationHub) Resolve(ticketID string, status ConfirmationStatus) bool {
	h.mu.Lock()
	ch, ok := h.pending[ticketID]
	if ok {
		delete(h.pending, ticketID)
	}
	h.mu.Unlock()

	if !ok {
		h.logger.Warn("confirmation for unknown ticket dropped", zap.String("ticket_id", ticketID))
		return false
	}
	ch <- status
	return true
}

// PendingCount reports how many waits are outstanding.
func (h *ConfirmationHub) PendingCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}
