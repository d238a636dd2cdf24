package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingsName = "integration"

type postgresSettingsRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSettingsRepository stores settings as a single row.
func NewPostgresSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &postgresSettingsRepository{pool: pool}
}

func (r *postgresSettingsRepository) Load(ctx context.Context) (IntegrationSettings, error) {
	const query = `SELECT payload FROM integration_settings WHERE name=$1`
	var (
		settings IntegrationSettings
		payload  []byte
	)
	if err := r.pool.QueryRow(ctx, query, settingsName).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings, nil
		}
		return settings, err
	}
	if err := json.Unmarshal(payload, &settings); err != nil {
		return IntegrationSettings{}, err
	}
	return settings, nil
}

func (r *postgresSettingsRepository) Save(ctx context.Context, settings IntegrationSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO integration_settings (name, payload, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (name) DO UPDATE SET payload=EXCLUDED.payload, updated_at=NOW()`
	_, err = r.pool.Exec(ctx, query, settingsName, payload)
	return err
}
