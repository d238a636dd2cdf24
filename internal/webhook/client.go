package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spec-kit/ssu-portal/internal/domain"
)

// SinkClient posts closed tickets to the configured external sink, one
// blocking request per ticket.
type SinkClient struct {
	httpClient *http.Client
}

// NewSinkClient builds a client with the given per-request timeout.
func NewSinkClient(timeout time.Duration) *SinkClient {
	return &SinkClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// sinkPayload is the full ticket record with notes and photos always present,
// defaulted to empty when the ticket carries none.
type sinkPayload struct {
	domain.Ticket
	Notes  string   `json:"notes"`
	Photos []string `json:"photos"`
}

// Send delivers one ticket to the sink. Any non-2xx response is an error.
func (c *SinkClient) Send(ctx context.Context, url string, ticket domain.Ticket) error {
	body, err := json.Marshal(sinkPayload{
		Ticket: ticket,
		Notes:  ticket.Notes,
		Photos: defaultPhotos(ticket.Photos),
	})
	if err != nil {
		return fmt.Errorf("marshal ticket %s: %w", ticket.OSNumber, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func defaultPhotos(photos []string) []string {
	if photos == nil {
		return []string{}
	}
	return photos
}
