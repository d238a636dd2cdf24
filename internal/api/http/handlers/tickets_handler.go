package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ssu-portal/internal/api/dto"
	"github.com/spec-kit/ssu-portal/internal/auth"
	"github.com/spec-kit/ssu-portal/internal/domain"
	"github.com/spec-kit/ssu-portal/internal/service"
	"github.com/spec-kit/ssu-portal/internal/store"
	apperrors "github.com/spec-kit/ssu-portal/pkg/util"
)

// TicketsHandler exposes the dashboard ticket operations.
type TicketsHandler struct {
	store     *store.TicketStore
	importer  *service.ImportService
	lifecycle *service.LifecycleService
	delivery  *service.DeliveryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketStore *store.TicketStore, importService *service.ImportService, lifecycle *service.LifecycleService, delivery *service.DeliveryService) *TicketsHandler {
	return &TicketsHandler{store: ticketStore, importer: importService, lifecycle: lifecycle, delivery: delivery}
}

// ticketFilter mirrors the dashboard filter widgets.
type ticketFilter struct {
	statuses      []domain.TicketStatus
	neighborhoods []string
	syntheses     []string
	managers      []string
}

// List GET /tickets. Field managers only see their own queue.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	filter := parseTicketQuery(c)
	if principal.User.Role.IsManager() {
		filter.managers = []string{principal.User.Name}
	}

	now := time.Now()
	items := make([]dto.TicketSummary, 0)
	for _, ticket := range h.store.All() {
		if !filter.matches(ticket) {
			continue
		}
		items = append(items, ticketSummary(ticket, now))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, found := h.store.Get(c.Params("id"))
	if !found {
		return apperrors.NewNotFound("ticket", nil)
	}
	if principal.User.Role.IsManager() && ticket.AssignedManager != principal.User.Name {
		return apperrors.NewForbidden("ticket not assigned to caller")
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, time.Now())})
}

// Import POST /master/tickets/import. Accepts the semicolon-delimited export
// as a multipart file upload.
func (h *TicketsHandler) Import(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file required", nil)
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		return apperrors.NewValidationError("only CSV files are supported", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.MapError(err)
	}
	defer file.Close()

	imported, err := h.importer.ImportCSV(c.Context(), file)
	if err != nil {
		return apperrors.NewValidationError("could not parse file", fiber.Map{"reason": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ImportResponse{Imported: imported}})
}

// Assign POST /master/tickets/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 {
		return apperrors.NewValidationError("ticket_ids required", nil)
	}
	if strings.TrimSpace(req.Manager) == "" {
		return apperrors.NewValidationError("manager required", nil)
	}
	updated := h.lifecycle.Assign(c.Context(), req.TicketIDs, req.Manager)
	return c.JSON(fiber.Map{"data": dto.BatchResponse{Updated: updated}})
}

// Start POST /manager/tickets/start.
func (h *TicketsHandler) Start(c *fiber.Ctx) error {
	var req dto.StartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 {
		return apperrors.NewValidationError("ticket_ids required", nil)
	}
	updated := h.lifecycle.StartAttendance(c.Context(), req.TicketIDs)
	return c.JSON(fiber.Map{"data": dto.BatchResponse{Updated: updated}})
}

// Close POST /manager/tickets/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	var req dto.CloseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 {
		return apperrors.NewValidationError("ticket_ids required", nil)
	}
	updated := h.lifecycle.CloseTickets(c.Context(), req.TicketIDs, req.Notes, req.Photos)
	return c.JSON(fiber.Map{"data": dto.BatchResponse{Updated: updated}})
}

// Deliver POST /master/tickets/deliver. Rejects a second batch while one is
// in flight; a failed batch is reported as a structured result, not an error.
func (h *TicketsHandler) Deliver(c *fiber.Ctx) error {
	var req dto.DeliverRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if h.delivery.InFlight() {
		return apperrors.NewConflict("delivery already in progress", nil)
	}
	result := h.delivery.Deliver(c.Context(), req.TicketIDs)
	return c.JSON(fiber.Map{"data": dto.DeliveryResponse{Success: result.Success, Error: result.Error}})
}

func parseTicketQuery(c *fiber.Ctx) ticketFilter {
	filter := ticketFilter{}
	for _, part := range splitQuery(c.Query("status")) {
		filter.statuses = append(filter.statuses, domain.TicketStatus(part))
	}
	filter.neighborhoods = splitQuery(c.Query("neighborhood"))
	filter.syntheses = splitQuery(c.Query("synthesis"))
	filter.managers = splitQuery(c.Query("manager"))
	return filter
}

func splitQuery(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (f ticketFilter) matches(ticket domain.Ticket) bool {
	if len(f.statuses) > 0 && !containsStatus(f.statuses, ticket.Status) {
		return false
	}
	if len(f.neighborhoods) > 0 && !contains(f.neighborhoods, ticket.ComplaintAddress.Neighborhood) {
		return false
	}
	if len(f.syntheses) > 0 && !contains(f.syntheses, ticket.Synthesis) {
		return false
	}
	if len(f.managers) > 0 && !contains(f.managers, ticket.AssignedManager) {
		return false
	}
	return true
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func containsStatus(values []domain.TicketStatus, target domain.TicketStatus) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func ticketSummary(ticket domain.Ticket, now time.Time) dto.TicketSummary {
	return dto.TicketSummary{
		ID:              ticket.ID,
		OSNumber:        ticket.OSNumber,
		OpenDate:        ticket.OpenDate,
		Synthesis:       ticket.Synthesis,
		Neighborhood:    ticket.ComplaintAddress.Neighborhood,
		Status:          ticket.Status,
		AssignedManager: ticket.AssignedManager,
		SLA:             ticket.SLALabel(now),
	}
}

func ticketDetail(ticket domain.Ticket, now time.Time) dto.TicketDetail {
	return dto.TicketDetail{
		ID:               ticket.ID,
		OSNumber:         ticket.OSNumber,
		OpenDate:         ticket.OpenDate,
		Synthesis:        ticket.Synthesis,
		Requester:        ticket.Requester,
		ComplaintAddress: ticket.ComplaintAddress,
		Status:           ticket.Status,
		AssignedManager:  ticket.AssignedManager,
		StatusHistory:    ticket.StatusHistory,
		Notes:            ticket.Notes,
		SLA:              ticket.SLALabel(now),
	}
}
