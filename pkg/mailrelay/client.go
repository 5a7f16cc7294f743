package mailrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"logistics-contact-backend/config"
	"logistics-contact-backend/internal/domain"
)

const sendPath = "/api/v1.0/email/send"

// maxErrorBody caps how much of a relay rejection is copied into the error
const maxErrorBody = 512

// Client sends templated emails through the hosted mail relay REST API
type Client struct {
	endpoint   string
	serviceID  string
	publicKey  string
	privateKey string
	httpClient *http.Client
}

type sendRequest struct {
	ServiceID      string                `json:"service_id"`
	TemplateID     string                `json:"template_id"`
	UserID         string                `json:"user_id"`
	AccessToken    string                `json:"accessToken,omitempty"`
	TemplateParams domain.TemplateParams `json:"template_params"`
}

// NewClient creates a relay client from configuration
func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.MailRelayTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   cfg.MailRelayEndpoint,
		serviceID:  cfg.MailRelayServiceID,
		publicKey:  cfg.MailRelayPublicKey,
		privateKey: cfg.MailRelayPrivateKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// IsConfigured checks if the relay credentials are present
func (c *Client) IsConfigured() bool {
	return c.endpoint != "" && c.serviceID != "" && c.publicKey != ""
}

// Send posts the template parameters to the relay. Only HTTP 200 counts as delivered.
func (c *Client) Send(ctx context.Context, templateID string, params domain.TemplateParams) error {
	payload, err := json.Marshal(sendRequest{
		ServiceID:      c.serviceID,
		TemplateID:     templateID,
		UserID:         c.publicKey,
		AccessToken:    c.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+sendPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach mail relay: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mail relay rejected message: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
