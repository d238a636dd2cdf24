package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ssu-portal/internal/api/dto"
	"github.com/spec-kit/ssu-portal/internal/service"
	apperrors "github.com/spec-kit/ssu-portal/pkg/util"
)

// IntegrationHandler manages the admin webhook configuration.
type IntegrationHandler struct {
	service *service.IntegrationService
}

// NewIntegrationHandler constructs handler.
func NewIntegrationHandler(integrationService *service.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{service: integrationService}
}

// Get GET /admin/integration.
func (h *IntegrationHandler) Get(c *fiber.Ctx) error {
	settings, err := h.service.Get(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.IntegrationResponse{
		WebhookURL:  settings.WebhookURL,
		CallbackURL: settings.CallbackURL,
	}})
}

// Update PUT /admin/integration.
func (h *IntegrationHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateIntegrationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	webhookURL := strings.TrimSpace(req.WebhookURL)
	if webhookURL != "" && !strings.HasPrefix(webhookURL, "http://") && !strings.HasPrefix(webhookURL, "https://") {
		return apperrors.NewValidationError("webhook_url must be an http(s) URL", nil)
	}

	settings, err := h.service.Update(c.Context(), webhookURL)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.IntegrationResponse{
		WebhookURL:  settings.WebhookURL,
		CallbackURL: settings.CallbackURL,
	}})
}
