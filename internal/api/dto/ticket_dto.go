package dto

import (
	"github.com/spec-kit/ssu-portal/internal/domain"
)

// TicketSummary is the list row for the dashboards. Photos stay out of list
// payloads.
type TicketSummary struct {
	ID              string              `json:"id"`
	OSNumber        string              `json:"osNumber"`
	OpenDate        string              `json:"openDate"`
	Synthesis       string              `json:"synthesis"`
	Neighborhood    string              `json:"neighborhood"`
	Status          domain.TicketStatus `json:"status"`
	AssignedManager string              `json:"assignedManager,omitempty"`
	SLA             string              `json:"sla"`
}

// TicketDetail is the full ticket view including the audit trail.
type TicketDetail struct {
	ID               string                      `json:"id"`
	OSNumber         string                      `json:"osNumber"`
	OpenDate         string                      `json:"openDate"`
	Synthesis        string                      `json:"synthesis"`
	Requester        domain.Requester            `json:"requester"`
	ComplaintAddress domain.ComplaintAddress     `json:"complaintAddress"`
	Status           domain.TicketStatus         `json:"status"`
	AssignedManager  string                      `json:"assignedManager,omitempty"`
	StatusHistory    []domain.StatusHistoryEntry `json:"statusHistory"`
	Notes            string                      `json:"notes,omitempty"`
	SLA              string                      `json:"sla"`
}

// ImportResponse reports how many tickets a CSV upload produced.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// AssignRequest schedules tickets under a manager.
type AssignRequest struct {
	TicketIDs []string `json:"ticket_ids"`
	Manager   string   `json:"manager"`
}

// StartRequest begins attendance on tickets.
type StartRequest struct {
	TicketIDs []string `json:"ticket_ids"`
}

// CloseRequest closes tickets with optional attendance evidence.
type CloseRequest struct {
	TicketIDs []string `json:"ticket_ids"`
	Notes     string   `json:"notes,omitempty"`
	Photos    []string `json:"photos,omitempty"`
}

// DeliverRequest pushes closed tickets to the external sink.
type DeliverRequest struct {
	TicketIDs []string `json:"ticket_ids"`
}

// BatchResponse reports how many tickets an operation touched.
type BatchResponse struct {
	Updated int `json:"updated"`
}

// DeliveryResponse mirrors the orchestrator's structured result.
type DeliveryResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
