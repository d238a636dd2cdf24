package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ssu-portal/internal/api/dto"
	"github.com/spec-kit/ssu-portal/internal/observability"
	"github.com/spec-kit/ssu-portal/internal/service"
	"github.com/spec-kit/ssu-portal/internal/webhook"
	apperrors "github.com/spec-kit/ssu-portal/pkg/util"
)

// CallbackHandler receives the sink's per-ticket OK/NOK confirmations.
type CallbackHandler struct {
	integration   *service.IntegrationService
	confirmations *webhook.ConfirmationHub
	metrics       *observability.Metrics
}

// NewCallbackHandler constructs handler.
func NewCallbackHandler(integration *service.IntegrationService, confirmations *webhook.ConfirmationHub, metrics *observability.Metrics) *CallbackHandler {
	return &CallbackHandler{integration: integration, confirmations: confirmations, metrics: metrics}
}

// Receive POST /api/callback/:callbackID. The path id must match the
// installation's generated callback identity.
func (h *CallbackHandler) Receive(c *fiber.Ctx) error {
	if !h.integration.ValidCallbackID(c.Context(), c.Params("callbackID")) {
		return apperrors.NewNotFound("callback endpoint", nil)
	}

	var req dto.CallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	status := webhook.ConfirmationStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status != webhook.ConfirmationOK && status != webhook.ConfirmationNOK {
		return apperrors.NewValidationError(`status must be "OK" or "NOK"`, nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticketId required", nil)
	}

	h.metrics.RecordConfirmation(string(status))
	matched := h.confirmations.Resolve(req.TicketID, status)
	return c.JSON(fiber.Map{"data": fiber.Map{"received": true, "matched": matched}})
}
