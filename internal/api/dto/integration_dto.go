package dto

// IntegrationResponse exposes the webhook configuration.
type IntegrationResponse struct {
	WebhookURL  string `json:"webhook_url"`
	CallbackURL string `json:"callback_url"`
}

// UpdateIntegrationRequest sets the sink URL.
type UpdateIntegrationRequest struct {
	WebhookURL string `json:"webhook_url"`
}

// CallbackRequest is the sink's per-ticket confirmation signal.
type CallbackRequest struct {
	Status   string `json:"status"`
	TicketID string `json:"ticketId"`
}
