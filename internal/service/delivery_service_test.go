package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ssu-portal/internal/config"
	"github.com/spec-kit/ssu-portal/internal/domain"
	"github.com/spec-kit/ssu-portal/internal/repository"
	"github.com/spec-kit/ssu-portal/internal/store"
	"github.com/spec-kit/ssu-portal/internal/webhook"
)

type sinkRecorder struct {
	mu       sync.Mutex
	payloads []map[string]any
	status   int
}

func (r *sinkRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(req.Body).Decode(&payload)
		r.mu.Lock()
		r.payloads = append(r.payloads, payload)
		status := r.status
		r.mu.Unlock()
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	})
}

func (r *sinkRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func (r *sinkRecorder) osNumbers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	numbers := make([]string, 0, len(r.payloads))
	for _, p := range r.payloads {
		if v, ok := p["osNumber"].(string); ok {
			numbers = append(numbers, v)
		}
	}
	return numbers
}

func closedTicket(id, osNumber string) domain.Ticket {
	now := time.Now()
	return domain.Ticket{
		ID:       id,
		OSNumber: osNumber,
		Status:   domain.TicketStatusClosed,
		StatusHistory: []domain.StatusHistoryEntry{
			{Date: now, Status: domain.TicketStatusOpen},
			{Date: now, Status: domain.TicketStatusClosed},
		},
	}
}

type deliveryFixture struct {
	store *store.TicketStore
	hub   *webhook.ConfirmationHub
	svc   *DeliveryService
}

func newDeliveryFixture(t *testing.T, webhookURL, callbackURL string, tickets ...domain.Ticket) *deliveryFixture {
	t.Helper()
	ctx := context.Background()

	ticketStore := store.NewTicketStore(repository.NewMemorySnapshotRepository(), zap.NewNop())
	ticketStore.AddTickets(ctx, tickets)

	settings := repository.NewMemorySettingsRepository()
	if webhookURL != "" || callbackURL != "" {
		if err := settings.Save(ctx, repository.IntegrationSettings{
			WebhookURL:  webhookURL,
			CallbackURL: callbackURL,
			CallbackID:  "ssu-test",
		}); err != nil {
			t.Fatalf("save settings: %v", err)
		}
	}

	hub := webhook.NewConfirmationHub(zap.NewNop())
	cfg := config.DeliveryConfig{
		InterItemDelayMS:      1,
		ConfirmTimeoutSeconds: 2,
		RequestTimeoutSeconds: 5,
	}
	svc := NewDeliveryService(cfg, DeliveryDependencies{
		Store:         ticketStore,
		Lifecycle:     NewLifecycleService(ticketStore, nil),
		Settings:      settings,
		Sink:          webhook.NewSinkClient(cfg.RequestTimeout()),
		Confirmations: hub,
		Logger:        zap.NewNop(),
	})
	return &deliveryFixture{store: ticketStore, hub: hub, svc: svc}
}

func TestDeliverFailsWithoutWebhookURL(t *testing.T) {
	fx := newDeliveryFixture(t, "", "", closedTicket("t1", "SSU 2025/0001"))

	result := fx.svc.Deliver(context.Background(), []string{"t1"})
	if result.Success {
		t.Fatal("delivery succeeded without a configured webhook URL")
	}
	if result.Error == "" {
		t.Error("expected a configuration error message")
	}
	got, _ := fx.store.Get("t1")
	if got.Status != domain.TicketStatusClosed {
		t.Errorf("ticket status = %q, want unchanged %q", got.Status, domain.TicketStatusClosed)
	}
}

func TestDeliverEmptyBatchSucceedsWithoutNetworkCalls(t *testing.T) {
	recorder := &sinkRecorder{}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	fx := newDeliveryFixture(t, server.URL, "")
	result := fx.svc.Deliver(context.Background(), nil)
	if !result.Success {
		t.Fatalf("Deliver() = %+v, want success", result)
	}
	if recorder.count() != 0 {
		t.Errorf("network calls = %d, want 0", recorder.count())
	}
}

func TestDeliverSendsInOrderAndWritesOffBatch(t *testing.T) {
	recorder := &sinkRecorder{}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	fx := newDeliveryFixture(t, server.URL, "",
		closedTicket("t1", "SSU 2025/0001"),
		closedTicket("t2", "SSU 2025/0002"),
		closedTicket("t3", "SSU 2025/0003"),
	)

	result := fx.svc.Deliver(context.Background(), []string{"t1", "t2", "t3"})
	if !result.Success {
		t.Fatalf("Deliver() = %+v, want success", result)
	}

	wantOrder := []string{"SSU 2025/0001", "SSU 2025/0002", "SSU 2025/0003"}
	gotOrder := recorder.osNumbers()
	if len(gotOrder) != len(wantOrder) {
		t.Fatalf("sent %d tickets, want %d", len(gotOrder), len(wantOrder))
	}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Errorf("position %d: sent %q, want %q", i, gotOrder[i], wantOrder[i])
		}
	}

	for _, id := range []string{"t1", "t2", "t3"} {
		ticket, _ := fx.store.Get(id)
		if ticket.Status != domain.TicketStatusWrittenOff {
			t.Errorf("%s status = %q, want %q", id, ticket.Status, domain.TicketStatusWrittenOff)
		}
	}
}

func TestDeliverPayloadDefaultsNotesAndPhotos(t *testing.T) {
	recorder := &sinkRecorder{}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	fx := newDeliveryFixture(t, server.URL, "", closedTicket("t1", "SSU 2025/0001"))
	if result := fx.svc.Deliver(context.Background(), []string{"t1"}); !result.Success {
		t.Fatalf("Deliver() = %+v, want success", result)
	}

	recorder.mu.Lock()
	payload := recorder.payloads[0]
	recorder.mu.Unlock()

	if notes, ok := payload["notes"]; !ok || notes != "" {
		t.Errorf("payload notes = %v (present=%v), want empty string", notes, ok)
	}
	photos, ok := payload["photos"].([]any)
	if !ok {
		t.Fatalf("payload photos = %v, want empty list", payload["photos"])
	}
	if len(photos) != 0 {
		t.Errorf("payload photos = %v, want empty", photos)
	}
}

func TestDeliverAbortsBatchOnTransportError(t *testing.T) {
	recorder := &sinkRecorder{status: http.StatusInternalServerError}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	fx := newDeliveryFixture(t, server.URL, "",
		closedTicket("t1", "SSU 2025/0001"),
		closedTicket("t2", "SSU 2025/0002"),
	)

	result := fx.svc.Deliver(context.Background(), []string{"t1", "t2"})
	if result.Success {
		t.Fatal("delivery succeeded despite sink failure")
	}
	if recorder.count() != 1 {
		t.Errorf("network calls = %d, want 1 (abort on first failure)", recorder.count())
	}
	for _, id := range []string{"t1", "t2"} {
		ticket, _ := fx.store.Get(id)
		if ticket.Status != domain.TicketStatusClosed {
			t.Errorf("%s status = %q, want unchanged", id, ticket.Status)
		}
	}
}

func TestDeliverNOKConfirmationAbortsBatchWithoutCommit(t *testing.T) {
	recorder := &sinkRecorder{}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	fx := newDeliveryFixture(t, server.URL, "http://localhost/api/callback/ssu-test",
		closedTicket("t1", "SSU 2025/0001"),
		closedTicket("t2", "SSU 2025/0002"),
		closedTicket("t3", "SSU 2025/0003"),
	)

	go func() {
		resolve := func(id string, status webhook.ConfirmationStatus) {
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				if fx.hub.Resolve(id, status) {
					return
				}
				time.Sleep(time.Millisecond)
			}
		}
		resolve("t1", webhook.ConfirmationOK)
		resolve("t2", webhook.ConfirmationNOK)
	}()

	result := fx.svc.Deliver(context.Background(), []string{"t1", "t2", "t3"})
	if result.Success {
		t.Fatal("delivery succeeded despite NOK confirmation")
	}
	if !strings.Contains(result.Error, "SSU 2025/0002") {
		t.Errorf("error %q does not name the offending ticket", result.Error)
	}
	// no partial commit: even the already-confirmed first ticket stays Closed
	for _, id := range []string{"t1", "t2", "t3"} {
		ticket, _ := fx.store.Get(id)
		if ticket.Status != domain.TicketStatusClosed {
			t.Errorf("%s status = %q, want %q", id, ticket.Status, domain.TicketStatusClosed)
		}
	}
	if recorder.count() != 2 {
		t.Errorf("network calls = %d, want 2", recorder.count())
	}
}

func TestDeliverSkipsUnknownIDs(t *testing.T) {
	recorder := &sinkRecorder{}
	server := httptest.NewServer(recorder.handler())
	defer server.Close()

	fx := newDeliveryFixture(t, server.URL, "", closedTicket("t1", "SSU 2025/0001"))
	result := fx.svc.Deliver(context.Background(), []string{"ghost", "t1"})
	if !result.Success {
		t.Fatalf("Deliver() = %+v, want success", result)
	}
	if recorder.count() != 1 {
		t.Errorf("network calls = %d, want 1", recorder.count())
	}
}

func TestDeliverRejectsSecondBatchInFlight(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fx := newDeliveryFixture(t, server.URL, "", closedTicket("t1", "SSU 2025/0001"))

	done := make(chan DeliveryResult, 1)
	go func() {
		done <- fx.svc.Deliver(context.Background(), []string{"t1"})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !fx.svc.InFlight() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !fx.svc.InFlight() {
		t.Fatal("first batch never reported in flight")
	}

	second := fx.svc.Deliver(context.Background(), []string{"t1"})
	if second.Success {
		t.Error("second concurrent batch was accepted")
	}

	close(release)
	if first := <-done; !first.Success {
		t.Errorf("first batch = %+v, want success", first)
	}
}
