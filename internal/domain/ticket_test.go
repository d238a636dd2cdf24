package domain

import (
	"testing"
	"time"
)

func TestAppendHistoryKeepsInvariants(t *testing.T) {
	now := time.Now()
	ticket := Ticket{
		ID:     "t1",
		Status: TicketStatusOpen,
		StatusHistory: []StatusHistoryEntry{
			{Date: now, Status: TicketStatusOpen, Notes: "Importado via CSV"},
		},
	}

	before := len(ticket.StatusHistory)
	ticket.AppendHistory(TicketStatusScheduled, "Alocado para Gerente A", now.Add(time.Minute))

	if len(ticket.StatusHistory) != before+1 {
		t.Fatalf("history length = %d, want %d", len(ticket.StatusHistory), before+1)
	}
	last := ticket.StatusHistory[len(ticket.StatusHistory)-1]
	if last.Status != ticket.Status {
		t.Errorf("last history status = %q, current status = %q", last.Status, ticket.Status)
	}
	if ticket.Status != TicketStatusScheduled {
		t.Errorf("status = %q, want %q", ticket.Status, TicketStatusScheduled)
	}
}

func TestAppendHistoryDoesNotAliasPreviousTrail(t *testing.T) {
	now := time.Now()
	original := Ticket{
		ID:            "t1",
		Status:        TicketStatusOpen,
		StatusHistory: []StatusHistoryEntry{{Date: now, Status: TicketStatusOpen}},
	}

	updated := original
	updated.AppendHistory(TicketStatusScheduled, "", now)

	if len(original.StatusHistory) != 1 {
		t.Fatalf("original trail mutated, length = %d", len(original.StatusHistory))
	}
	if len(updated.StatusHistory) != 2 {
		t.Fatalf("updated trail length = %d, want 2", len(updated.StatusHistory))
	}
}

func TestWithoutPhotos(t *testing.T) {
	ticket := Ticket{ID: "t1", Photos: []string{"base64data"}}
	stripped := ticket.WithoutPhotos()

	if stripped.Photos != nil {
		t.Errorf("stripped photos = %v, want nil", stripped.Photos)
	}
	if len(ticket.Photos) != 1 {
		t.Errorf("source ticket photos mutated")
	}
}

func TestSLALabel(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(2*time.Hour + 35*time.Minute)

	tests := []struct {
		name   string
		ticket Ticket
		now    time.Time
		want   string
	}{
		{
			name:   "no start time",
			ticket: Ticket{},
			now:    end,
			want:   "N/A",
		},
		{
			name:   "closed window",
			ticket: Ticket{SLAStartTime: &start, SLAEndTime: &end},
			now:    end.Add(10 * time.Hour),
			want:   "2h 35m",
		},
		{
			name:   "open window measured against now",
			ticket: Ticket{SLAStartTime: &start},
			now:    start.Add(26 * time.Hour),
			want:   "26h 0m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ticket.SLALabel(tt.now); got != tt.want {
				t.Errorf("SLALabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSLAElapsedAbsentWithoutStart(t *testing.T) {
	var ticket Ticket
	if _, ok := ticket.SLAElapsed(time.Now()); ok {
		t.Error("SLAElapsed reported a window without a start time")
	}
}
