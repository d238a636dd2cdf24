package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ssu-portal/internal/domain"
)

// Parse reads the municipality's semicolon-delimited export. The first row is
// the header; recognized columns map to ticket fields and missing columns
// default to empty. Every imported ticket starts Open with a single history
// entry.
func Parse(r io.Reader) ([]domain.Ticket, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	now := time.Now()
	var tickets []domain.Ticket
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		get := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		fullAddress := get("Endereço")
		street := fullAddress
		if idx := strings.Index(fullAddress, ","); idx >= 0 {
			street = strings.TrimSpace(fullAddress[:idx])
		}

		phone := get("Celular Requerente")
		if phone == "" {
			phone = get("Telefone Requerente")
		}

		openDate := get("Data")
		if openDate == "" {
			openDate = now.Format("2006-01-02")
		}

		notes := ""
		if solicitante := get("Solicitante"); solicitante != "" {
			notes = "Solicitante: " + solicitante
		}

		tickets = append(tickets, domain.Ticket{
			ID:        newTicketID(),
			OSNumber:  get("Processo"),
			OpenDate:  openDate,
			Synthesis: get("Serviço"),
			Requester: domain.Requester{
				Name:    get("Requerente"),
				Phone:   phone,
				CPF:     get("CPF/CNPJ"),
				Address: fullAddress,
			},
			ComplaintAddress: domain.ComplaintAddress{
				Street:       street,
				Neighborhood: get("Bairro"),
				Reference:    get("Localização"),
			},
			Status: domain.TicketStatusOpen,
			Notes:  notes,
			StatusHistory: []domain.StatusHistoryEntry{{
				Date:   now,
				Status: domain.TicketStatusOpen,
				Notes:  "Importado via CSV",
			}},
		})
	}
	return tickets, nil
}

func newTicketID() string {
	return "ticket-" + uuid.NewString()
}
