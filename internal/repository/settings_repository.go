package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// IntegrationSettings holds the admin-configured webhook endpoints. CallbackID
// is generated once per installation and embedded in the callback URL.
type IntegrationSettings struct {
	WebhookURL  string `json:"webhookUrl"`
	CallbackURL string `json:"callbackUrl"`
	CallbackID  string `json:"callbackId"`
}

// SettingsRepository persists integration settings. Load returns the zero
// value when nothing has been saved yet.
type SettingsRepository interface {
	Load(ctx context.Context) (IntegrationSettings, error)
	Save(ctx context.Context, settings IntegrationSettings) error
}

// NewSettingsRepository selects a backend implementation.
func NewSettingsRepository(backend string, rdb *redis.Client, pool *pgxpool.Pool) (SettingsRepository, error) {
	switch backend {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis backend selected but no client available")
		}
		return NewRedisSettingsRepository(rdb), nil
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("postgres backend selected but no pool available")
		}
		return NewPostgresSettingsRepository(pool), nil
	case "memory":
		return NewMemorySettingsRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
