package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for service orders. The values are
// the labels the municipality uses on the wire and in exports, so they are
// kept verbatim.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Em Aberto"
	TicketStatusScheduled  TicketStatus = "Programado/Aguardando"
	TicketStatusInProgress TicketStatus = "Em Atendimento"
	TicketStatusClosed     TicketStatus = "Encerrado/Atendido"
	TicketStatusWrittenOff TicketStatus = "Baixa"
)

// Requester identifies the citizen who opened the service order.
type Requester struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	CPF     string `json:"cpf,omitempty"`
	Address string `json:"address,omitempty"`
}

// ComplaintAddress locates the reported problem.
type ComplaintAddress struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	Number       string `json:"number,omitempty"`
	Reference    string `json:"reference,omitempty"`
}

// StatusHistoryEntry is an immutable audit trail entry. Every transition
// appends exactly one; entries are never rewritten or truncated.
type StatusHistoryEntry struct {
	Date   time.Time    `json:"date"`
	Status TicketStatus `json:"status"`
	Notes  string       `json:"notes,omitempty"`
}

// Ticket is the aggregate for municipal service orders.
type Ticket struct {
	ID               string               `json:"id"`
	OSNumber         string               `json:"osNumber"`
	OpenDate         string               `json:"openDate"`
	Synthesis        string               `json:"synthesis"`
	Requester        Requester            `json:"requester"`
	ComplaintAddress ComplaintAddress     `json:"complaintAddress"`
	Status           TicketStatus         `json:"status"`
	AssignedManager  string               `json:"assignedManager,omitempty"`
	StatusHistory    []StatusHistoryEntry `json:"statusHistory"`
	Notes            string               `json:"notes,omitempty"`
	Photos           []string             `json:"photos,omitempty"`
	SLAStartTime     *time.Time           `json:"slaStartTime,omitempty"`
	SLAEndTime       *time.Time           `json:"slaEndTime,omitempty"`
}

// AppendHistory records a transition on the ticket's audit trail and moves the
// ticket to the new status, keeping the last-entry-equals-current invariant.
func (t *Ticket) AppendHistory(status TicketStatus, notes string, at time.Time) {
	t.Status = status
	t.StatusHistory = append(append([]StatusHistoryEntry{}, t.StatusHistory...), StatusHistoryEntry{
		Date:   at,
		Status: status,
		Notes:  notes,
	})
}

// WithoutPhotos returns a copy safe for the durable side-channel. Photo
// payloads are base64 blobs held in memory only.
func (t Ticket) WithoutPhotos() Ticket {
	t.Photos = nil
	return t
}

// SLAElapsed reports the handling duration. The second return is false when
// attendance never started; without an end stamp the window is still open and
// measured against now.
func (t Ticket) SLAElapsed(now time.Time) (time.Duration, bool) {
	if t.SLAStartTime == nil {
		return 0, false
	}
	end := now
	if t.SLAEndTime != nil {
		end = *t.SLAEndTime
	}
	return end.Sub(*t.SLAStartTime), true
}

// SLALabel renders the handling duration as whole hours plus minutes, or
// "N/A" when attendance never started.
func (t Ticket) SLALabel(now time.Time) string {
	elapsed, ok := t.SLAElapsed(now)
	if !ok {
		return "N/A"
	}
	hours := int(elapsed.Hours())
	minutes := int(elapsed.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
