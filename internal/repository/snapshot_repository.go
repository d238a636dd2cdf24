package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ssu-portal/internal/domain"
)

// Snapshot is the durable form of the ticket collection. Photos are stripped
// before a snapshot is written; the version gates destructive resets on schema
// changes.
type Snapshot struct {
	Version string          `json:"version"`
	Tickets []domain.Ticket `json:"tickets"`
}

// SnapshotRepository is the side-channel the ticket store mirrors itself to.
// Load returns nil when nothing has been persisted yet.
type SnapshotRepository interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}

// NewSnapshotRepository selects a backend implementation.
func NewSnapshotRepository(backend string, rdb *redis.Client, pool *pgxpool.Pool) (SnapshotRepository, error) {
	switch backend {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis backend selected but no client available")
		}
		return NewRedisSnapshotRepository(rdb), nil
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("postgres backend selected but no pool available")
		}
		return NewPostgresSnapshotRepository(pool), nil
	case "memory":
		return NewMemorySnapshotRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
