package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ssu-portal/internal/domain"
)

const snapshotName = "tickets"

type postgresSnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSnapshotRepository stores the snapshot as a single versioned row.
func NewPostgresSnapshotRepository(pool *pgxpool.Pool) SnapshotRepository {
	return &postgresSnapshotRepository{pool: pool}
}

func (r *postgresSnapshotRepository) Load(ctx context.Context) (*Snapshot, error) {
	const query = `SELECT version, payload FROM ticket_snapshots WHERE name=$1`
	var (
		version string
		payload []byte
	)
	if err := r.pool.QueryRow(ctx, query, snapshotName).Scan(&version, &payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(payload, &tickets); err != nil {
		return nil, err
	}
	return &Snapshot{Version: version, Tickets: tickets}, nil
}

func (r *postgresSnapshotRepository) Save(ctx context.Context, snapshot *Snapshot) error {
	payload, err := json.Marshal(snapshot.Tickets)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO ticket_snapshots (name, version, payload, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (name) DO UPDATE SET version=EXCLUDED.version, payload=EXCLUDED.payload, updated_at=NOW()`
	_, err = r.pool.Exec(ctx, query, snapshotName, snapshot.Version, payload)
	return err
}
