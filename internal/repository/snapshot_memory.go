package repository

import (
	"context"
	"sync"
)

type memorySnapshotRepository struct {
	mu       sync.Mutex
	snapshot *Snapshot
}

// NewMemorySnapshotRepository keeps the snapshot in process memory. Used for
// tests and for running without redis or postgres.
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{}
}

func (r *memorySnapshotRepository) Load(ctx context.Context) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot == nil {
		return nil, nil
	}
	copied := *r.snapshot
	copied.Tickets = append(copied.Tickets[:0:0], r.snapshot.Tickets...)
	return &copied, nil
}

func (r *memorySnapshotRepository) Save(ctx context.Context, snapshot *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *snapshot
	copied.Tickets = append(copied.Tickets[:0:0], snapshot.Tickets...)
	r.snapshot = &copied
	return nil
}
