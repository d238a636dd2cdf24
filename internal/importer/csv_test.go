package importer

import (
	"strings"
	"testing"

	"github.com/spec-kit/ssu-portal/internal/domain"
)

const sampleCSV = `Processo;Data;Serviço;Endereço;Bairro;Localização;Requerente;Celular Requerente;Telefone Requerente;CPF/CNPJ;Solicitante
SSU 2025/9999;2025-06-01;TAPA BURACO;Rua das Flores, 120;CENTRO;Em frente à praça;Maria Silva;11999990000;1133330000;123.456.789-00;Ouvidoria
`

func TestParseMapsColumnsToTicket(t *testing.T) {
	tickets, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("parsed %d tickets, want 1", len(tickets))
	}

	ticket := tickets[0]
	if ticket.OSNumber != "SSU 2025/9999" {
		t.Errorf("osNumber = %q", ticket.OSNumber)
	}
	if ticket.Synthesis != "TAPA BURACO" {
		t.Errorf("synthesis = %q", ticket.Synthesis)
	}
	if ticket.OpenDate != "2025-06-01" {
		t.Errorf("openDate = %q", ticket.OpenDate)
	}
	if ticket.ComplaintAddress.Street != "Rua das Flores" {
		t.Errorf("street = %q, want text before the first comma", ticket.ComplaintAddress.Street)
	}
	if ticket.ComplaintAddress.Neighborhood != "CENTRO" {
		t.Errorf("neighborhood = %q", ticket.ComplaintAddress.Neighborhood)
	}
	if ticket.ComplaintAddress.Reference != "Em frente à praça" {
		t.Errorf("reference = %q", ticket.ComplaintAddress.Reference)
	}
	if ticket.Requester.Name != "Maria Silva" {
		t.Errorf("requester = %q", ticket.Requester.Name)
	}
	if ticket.Requester.Phone != "11999990000" {
		t.Errorf("phone = %q, want the mobile number", ticket.Requester.Phone)
	}
	if ticket.Requester.CPF != "123.456.789-00" {
		t.Errorf("cpf = %q", ticket.Requester.CPF)
	}
	if ticket.Requester.Address != "Rua das Flores, 120" {
		t.Errorf("requester address = %q, want the full address", ticket.Requester.Address)
	}
	if ticket.Notes != "Solicitante: Ouvidoria" {
		t.Errorf("notes = %q", ticket.Notes)
	}
	if ticket.ID == "" || !strings.HasPrefix(ticket.ID, "ticket-") {
		t.Errorf("id = %q, want ticket- prefix", ticket.ID)
	}

	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %q, want %q", ticket.Status, domain.TicketStatusOpen)
	}
	if len(ticket.StatusHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(ticket.StatusHistory))
	}
	if entry := ticket.StatusHistory[0]; entry.Status != domain.TicketStatusOpen || entry.Notes != "Importado via CSV" {
		t.Errorf("history entry = %+v", entry)
	}
}

func TestParsePhoneFallsBackToLandline(t *testing.T) {
	csv := "Processo;Celular Requerente;Telefone Requerente\nSSU 2025/0001;;1133330000\n"
	tickets, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if tickets[0].Requester.Phone != "1133330000" {
		t.Errorf("phone = %q, want the landline fallback", tickets[0].Requester.Phone)
	}
}

func TestParseToleratesMissingColumnsAndShortRows(t *testing.T) {
	csv := "Processo;Serviço\nSSU 2025/0002;PODA DE ÁRVORE\nSSU 2025/0003\n"
	tickets, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("parsed %d tickets, want 2", len(tickets))
	}
	if tickets[0].ComplaintAddress.Neighborhood != "" {
		t.Errorf("neighborhood = %q, want empty for missing column", tickets[0].ComplaintAddress.Neighborhood)
	}
	if tickets[1].Synthesis != "" {
		t.Errorf("synthesis = %q, want empty for short row", tickets[1].Synthesis)
	}
	if tickets[0].OpenDate == "" {
		t.Error("openDate not defaulted when the column is missing")
	}
}

func TestParseGeneratesUniqueIDs(t *testing.T) {
	csv := "Processo\nSSU 2025/0004\nSSU 2025/0005\n"
	tickets, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if tickets[0].ID == tickets[1].ID {
		t.Errorf("duplicate ids: %q", tickets[0].ID)
	}
}

func TestParseEmptyBody(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Error("Parse() on an empty body succeeded, want header error")
	}

	tickets, err := Parse(strings.NewReader("Processo;Serviço\n"))
	if err != nil {
		t.Fatalf("Parse() header-only error = %v", err)
	}
	if len(tickets) != 0 {
		t.Errorf("parsed %d tickets from header-only file, want 0", len(tickets))
	}
}
