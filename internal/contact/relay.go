package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Deliverer sends a validated message. It reports success or failure only.
type Deliverer interface {
	Deliver(ctx context.Context, f Form) error
}

// DeliverFunc adapts a function to Deliverer.
type DeliverFunc func(ctx context.Context, f Form) error

func (fn DeliverFunc) Deliver(ctx context.Context, f Form) error { return fn(ctx, f) }

// DefaultRelayEndpoint is the public send endpoint of the mail relay.
const DefaultRelayEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// RelayClient posts messages to a template-based mail relay.
type RelayClient struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	HTTP       *http.Client
}

// NewRelayClient creates a client with a 15s timeout.
func NewRelayClient(endpoint, service, template, key string) *RelayClient {
	if endpoint == "" {
		endpoint = DefaultRelayEndpoint
	}
	return &RelayClient{
		Endpoint:   endpoint,
		ServiceID:  service,
		TemplateID: template,
		PublicKey:  key,
		HTTP:       &http.Client{Timeout: 15 * time.Second},
	}
}

type relayRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// Deliver sends f once. Any transport error or non-2xx status is an ErrDelivery.
func (c *RelayClient) Deliver(ctx context.Context, f Form) error {
	body, err := json.Marshal(relayRequest{
		ServiceID:      c.ServiceID,
		TemplateID:     c.TemplateID,
		UserID:         c.PublicKey,
		TemplateParams: f.Params(),
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: relay returned %d: %s", ErrDelivery, resp.StatusCode, bytes.TrimSpace(msg))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
