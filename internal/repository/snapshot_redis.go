package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisSnapshotKey = "ssu:tickets"

type redisSnapshotRepository struct {
	client *redis.Client
}

// NewRedisSnapshotRepository stores the snapshot as a single JSON value.
func NewRedisSnapshotRepository(client *redis.Client) SnapshotRepository {
	return &redisSnapshotRepository{client: client}
}

func (r *redisSnapshotRepository) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := r.client.Get(ctx, redisSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *redisSnapshotRepository) Save(ctx context.Context, snapshot *Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisSnapshotKey, raw, 0).Err()
}
