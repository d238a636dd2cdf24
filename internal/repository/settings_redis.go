package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisSettingsKey = "ssu:integration"

type redisSettingsRepository struct {
	client *redis.Client
}

// NewRedisSettingsRepository stores settings as a single JSON value.
func NewRedisSettingsRepository(client *redis.Client) SettingsRepository {
	return &redisSettingsRepository{client: client}
}

func (r *redisSettingsRepository) Load(ctx context.Context) (IntegrationSettings, error) {
	var settings IntegrationSettings
	raw, err := r.client.Get(ctx, redisSettingsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return settings, nil
		}
		return settings, err
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return IntegrationSettings{}, err
	}
	return settings, nil
}

func (r *redisSettingsRepository) Save(ctx context.Context, settings IntegrationSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisSettingsKey, raw, 0).Err()
}
