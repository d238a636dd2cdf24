package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ssu-portal/internal/domain"
	"github.com/spec-kit/ssu-portal/internal/repository"
	"github.com/spec-kit/ssu-portal/internal/store"
)

func seedStore(t *testing.T, tickets ...domain.Ticket) *store.TicketStore {
	t.Helper()
	s := store.NewTicketStore(repository.NewMemorySnapshotRepository(), zap.NewNop())
	s.AddTickets(context.Background(), tickets)
	return s
}

func openTicket(id string) domain.Ticket {
	return domain.Ticket{
		ID:       id,
		OSNumber: "SSU 2025/" + id,
		Status:   domain.TicketStatusOpen,
		StatusHistory: []domain.StatusHistoryEntry{
			{Date: time.Now(), Status: domain.TicketStatusOpen, Notes: "Importado via CSV"},
		},
	}
}

func TestAssignMovesOpenToScheduled(t *testing.T) {
	s := seedStore(t, openTicket("t1"), openTicket("t2"))
	svc := NewLifecycleService(s, nil)

	updated := svc.Assign(context.Background(), []string{"t1"}, "Gerente A - Execução")
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	ticket, _ := s.Get("t1")
	if ticket.Status != domain.TicketStatusScheduled {
		t.Errorf("status = %q, want %q", ticket.Status, domain.TicketStatusScheduled)
	}
	if ticket.AssignedManager != "Gerente A - Execução" {
		t.Errorf("assignedManager = %q", ticket.AssignedManager)
	}
	if len(ticket.StatusHistory) != 2 {
		t.Errorf("history length = %d, want 2", len(ticket.StatusHistory))
	}

	untouched, _ := s.Get("t2")
	if untouched.Status != domain.TicketStatusOpen {
		t.Errorf("unselected ticket moved to %q", untouched.Status)
	}
}

func TestAssignIsNoOpOutsideOpen(t *testing.T) {
	ticket := openTicket("t1")
	ticket.AppendHistory(domain.TicketStatusScheduled, "", time.Now())
	s := seedStore(t, ticket)
	svc := NewLifecycleService(s, nil)

	updated := svc.Assign(context.Background(), []string{"t1"}, "Gerente B - Execução")
	if updated != 0 {
		t.Fatalf("updated = %d, want 0", updated)
	}
	got, _ := s.Get("t1")
	if len(got.StatusHistory) != 2 {
		t.Errorf("history grew on a no-op: length = %d", len(got.StatusHistory))
	}
}

func TestStartAttendanceStampsSLA(t *testing.T) {
	ticket := openTicket("t1")
	ticket.AppendHistory(domain.TicketStatusScheduled, "", time.Now())
	s := seedStore(t, ticket)
	svc := NewLifecycleService(s, nil)

	before := time.Now()
	updated := svc.StartAttendance(context.Background(), []string{"t1"})
	after := time.Now()

	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}
	got, _ := s.Get("t1")
	if got.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %q, want %q", got.Status, domain.TicketStatusInProgress)
	}
	if got.SLAStartTime == nil {
		t.Fatal("slaStartTime not stamped")
	}
	if got.SLAStartTime.Before(before) || got.SLAStartTime.After(after) {
		t.Errorf("slaStartTime %v outside [%v, %v]", got.SLAStartTime, before, after)
	}
}

func TestStartAttendanceIsNoOpOutsideScheduled(t *testing.T) {
	s := seedStore(t, openTicket("t1"))
	svc := NewLifecycleService(s, nil)

	if updated := svc.StartAttendance(context.Background(), []string{"t1"}); updated != 0 {
		t.Fatalf("updated = %d, want 0", updated)
	}
	got, _ := s.Get("t1")
	if got.SLAStartTime != nil {
		t.Error("slaStartTime stamped on a no-op")
	}
}

func TestCloseTicketsAttachesEvidence(t *testing.T) {
	ticket := openTicket("t1")
	ticket.AppendHistory(domain.TicketStatusScheduled, "", time.Now())
	s := seedStore(t, ticket)
	svc := NewLifecycleService(s, nil)

	svc.StartAttendance(context.Background(), []string{"t1"})
	updated := svc.CloseTickets(context.Background(), []string{"t1"}, "buraco tapado", []string{"photo1"})
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	got, _ := s.Get("t1")
	if got.Status != domain.TicketStatusClosed {
		t.Errorf("status = %q, want %q", got.Status, domain.TicketStatusClosed)
	}
	if got.SLAEndTime == nil {
		t.Fatal("slaEndTime not stamped")
	}
	if got.SLAEndTime.Before(*got.SLAStartTime) {
		t.Errorf("slaEndTime %v before slaStartTime %v", got.SLAEndTime, got.SLAStartTime)
	}
	if got.Notes != "buraco tapado" {
		t.Errorf("notes = %q", got.Notes)
	}
	if len(got.Photos) != 1 {
		t.Errorf("photos = %v", got.Photos)
	}
	last := got.StatusHistory[len(got.StatusHistory)-1]
	if last.Notes != "buraco tapado" {
		t.Errorf("closing history note = %q", last.Notes)
	}
}

func TestCloseTicketsDefaultsHistoryNote(t *testing.T) {
	ticket := openTicket("t1")
	ticket.AppendHistory(domain.TicketStatusScheduled, "", time.Now())
	s := seedStore(t, ticket)
	svc := NewLifecycleService(s, nil)

	svc.StartAttendance(context.Background(), []string{"t1"})
	svc.CloseTickets(context.Background(), []string{"t1"}, "", nil)

	got, _ := s.Get("t1")
	last := got.StatusHistory[len(got.StatusHistory)-1]
	if last.Notes != "Serviço concluído" {
		t.Errorf("history note = %q, want default", last.Notes)
	}
}

func TestCloseTicketsIsNoOpOutsideInProgress(t *testing.T) {
	s := seedStore(t, openTicket("t1"))
	svc := NewLifecycleService(s, nil)

	if updated := svc.CloseTickets(context.Background(), []string{"t1"}, "n", nil); updated != 0 {
		t.Fatalf("updated = %d, want 0", updated)
	}
}

func TestMarkWrittenOffIsTerminal(t *testing.T) {
	ticket := openTicket("t1")
	ticket.AppendHistory(domain.TicketStatusClosed, "", time.Now())
	s := seedStore(t, ticket)
	svc := NewLifecycleService(s, nil)

	if updated := svc.MarkWrittenOff(context.Background(), []string{"t1"}); updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}
	got, _ := s.Get("t1")
	if got.Status != domain.TicketStatusWrittenOff {
		t.Errorf("status = %q, want %q", got.Status, domain.TicketStatusWrittenOff)
	}

	// a second write-off appends nothing
	if updated := svc.MarkWrittenOff(context.Background(), []string{"t1"}); updated != 0 {
		t.Errorf("second write-off updated = %d, want 0", updated)
	}
}

func TestEveryTransitionAppendsExactlyOneEntry(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, openTicket("t1"))
	svc := NewLifecycleService(s, nil)

	steps := []func(){
		func() { svc.Assign(ctx, []string{"t1"}, "Gerente A - Execução") },
		func() { svc.StartAttendance(ctx, []string{"t1"}) },
		func() { svc.CloseTickets(ctx, []string{"t1"}, "", nil) },
		func() { svc.MarkWrittenOff(ctx, []string{"t1"}) },
	}

	for i, step := range steps {
		before, _ := s.Get("t1")
		step()
		after, _ := s.Get("t1")
		if len(after.StatusHistory) != len(before.StatusHistory)+1 {
			t.Fatalf("step %d: history %d -> %d, want +1", i, len(before.StatusHistory), len(after.StatusHistory))
		}
		last := after.StatusHistory[len(after.StatusHistory)-1]
		if last.Status != after.Status {
			t.Fatalf("step %d: last entry %q != status %q", i, last.Status, after.Status)
		}
	}
}
