package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ssu-portal/internal/repository"
)

// IntegrationService manages the webhook sink configuration and the
// per-installation callback endpoint.
type IntegrationService struct {
	settings repository.SettingsRepository
	baseURL  string
	logger   *zap.Logger
}

// NewIntegrationService constructs the service. baseURL is the public origin
// the callback URL is generated under.
func NewIntegrationService(settings repository.SettingsRepository, baseURL string, logger *zap.Logger) *IntegrationService {
	return &IntegrationService{settings: settings, baseURL: baseURL, logger: logger}
}

// Get returns the current settings, generating and persisting the callback
// identity on first use.
func (s *IntegrationService) Get(ctx context.Context) (repository.IntegrationSettings, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return repository.IntegrationSettings{}, err
	}
	if settings.CallbackID == "" {
		settings.CallbackID = "ssu-" + uuid.NewString()
		settings.CallbackURL = fmt.Sprintf("%s/api/callback/%s", s.baseURL, settings.CallbackID)
		if err := s.settings.Save(ctx, settings); err != nil {
			return repository.IntegrationSettings{}, err
		}
		s.logger.Info("generated callback endpoint", zap.String("callback_url", settings.CallbackURL))
	}
	return settings, nil
}

// Update saves the sink URL, preserving the generated callback identity.
func (s *IntegrationService) Update(ctx context.Context, webhookURL string) (repository.IntegrationSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return repository.IntegrationSettings{}, err
	}
	settings.WebhookURL = webhookURL
	if err := s.settings.Save(ctx, settings); err != nil {
		return repository.IntegrationSettings{}, err
	}
	return settings, nil
}

// ValidCallbackID reports whether the given id matches the installation's
// generated callback identity.
func (s *IntegrationService) ValidCallbackID(ctx context.Context, callbackID string) bool {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load settings for callback validation", zap.Error(err))
		return false
	}
	return settings.CallbackID != "" && settings.CallbackID == callbackID
}
