// Package wordpress implements the CMS ports against the WordPress REST API
// and the JWT authentication plugin.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CMSClient    = (*Client)(nil)
	_ driven.TokenIssuer  = (*Client)(nil)
	_ driven.ImageFetcher = (*Client)(nil)
)

const userAgent = "authorsite/1.0"

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// Client talks to the wp/v2 REST namespace and the jwt-auth token endpoint.
type Client struct {
	http    *http.Client
	images  *http.Client
	baseURL string // e.g. https://cms.example.com/wp-json/wp/v2
	jwtURL  string // e.g. https://cms.example.com/wp-json/jwt-auth/v1
	logger  *slog.Logger
}

// NewClient creates a WordPress client whose REST GET requests go through an
// in-memory httpcache transport, so unchanged responses are revalidated with
// ETag/Last-Modified instead of downloaded again. Image downloads use a
// separate client without the cache. timeout bounds every request as a
// safety net alongside context cancellation.
func NewClient(baseURL, jwtURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   timeout,
	}
	c, err := NewClientWithHTTPClient(httpClient, baseURL, jwtURL, logger)
	if err != nil {
		return nil, err
	}
	c.images = &http.Client{Timeout: timeout}
	return c, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, jwtURL string, logger *slog.Logger) (*Client, error) {
	for name, raw := range map[string]string{"base URL": baseURL, "JWT URL": jwtURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("parsing %s: %q is not an absolute URL", name, raw)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:    httpClient,
		images:  httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		jwtURL:  strings.TrimRight(jwtURL, "/"),
		logger:  logger,
	}, nil
}

// apiError is the error body WordPress returns for failed requests.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends req and returns the response when the status is 2xx. Any other
// status is drained and converted to an error carrying a *driven.StatusError;
// 401 and 403 also match driven.ErrUnauthorized and 404 driven.ErrNotFound.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	statusErr := &driven.StatusError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil {
		statusErr.Message = apiErr.Message
	}

	c.logger.Debug("cms request failed",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"code", apiErr.Code,
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, errors.Join(driven.ErrUnauthorized, statusErr)
	case http.StatusNotFound:
		return nil, errors.Join(driven.ErrNotFound, statusErr)
	default:
		return nil, statusErr
	}
}

// getJSON fetches endpoint with query and decodes the body into dst. It
// returns the response headers for pagination.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, dst any) (http.Header, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", driven.ErrMalformedResponse, endpoint, err)
	}
	return resp.Header, nil
}

// postJSON sends body as JSON to u and decodes the response into dst. A
// non-empty token is sent as a bearer credential.
func (c *Client) postJSON(ctx context.Context, u, token string, body, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decoding response: %w", driven.ErrMalformedResponse, err)
	}
	return nil
}

// rendered is the {"rendered": "..."} wrapper WordPress uses for HTML fields.
type rendered struct {
	Rendered string `json:"rendered"`
}

// wpTimeLayout is the zone-less timestamp format of date and date_gmt.
const wpTimeLayout = "2006-01-02T15:04:05"

// parseWPTime parses date_gmt as UTC, falling back to the site-local date
// read as UTC when the GMT field is absent.
func parseWPTime(gmt, local string) time.Time {
	for _, raw := range []string{gmt, local} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(wpTimeLayout, raw); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// intHeader parses a numeric pagination header.
func intHeader(h http.Header, name string) (int, bool) {
	raw := h.Get(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
