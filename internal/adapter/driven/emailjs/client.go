// Package emailjs implements the Mailer port against the EmailJS REST API.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Mailer = (*Client)(nil)

// DefaultBaseURL is the public EmailJS API host.
const DefaultBaseURL = "https://api.emailjs.com"

const sendPath = "/api/v1.0/email/send"

// Credentials identify the EmailJS account and service. PrivateKey is
// optional and only needed when the account enforces it for API calls.
type Credentials struct {
	ServiceID  string
	PublicKey  string
	PrivateKey string
}

// Client sends template emails. Each Send is a single attempt.
type Client struct {
	http    *http.Client
	baseURL string
	creds   Credentials
	logger  *slog.Logger
}

// NewClient creates an EmailJS client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, creds Credentials, timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithHTTPClient(&http.Client{Timeout: timeout}, baseURL, creds, logger)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, creds Credentials, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		logger:  logger,
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
	AccessToken    string            `json:"accessToken,omitempty"`
}

// Send renders templateID with params and delivers it. EmailJS answers with a
// plain-text body; on failure that text becomes the StatusError message.
func (c *Client) Send(ctx context.Context, templateID string, params map[string]string) error {
	payload, err := json.Marshal(sendRequest{
		ServiceID:      c.creds.ServiceID,
		TemplateID:     templateID,
		UserID:         c.creds.PublicKey,
		TemplateParams: params,
		AccessToken:    c.creds.PrivateKey,
	})
	if err != nil {
		return fmt.Errorf("encoding email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sending email with template %s: %w", templateID, &driven.StatusError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		})
	}

	c.logger.Debug("email sent", "template", templateID)
	return nil
}
