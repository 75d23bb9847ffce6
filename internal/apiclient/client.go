package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tow-trip-planner/internal/models"
	"tow-trip-planner/internal/telemetry"
)

const (
	// DefaultTimeout bounds a single outbound call.
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 10 << 20
	maxMessageLen  = 256
	relayKeyHeader = "x-cors-api-key"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Provider   string
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	RelayURL   string
	RelayKey   string
}

// Client performs JSON calls against one external provider. It applies the
// per-call timeout, the optional CORS relay and maps failures to the error
// kinds in models.
type Client struct {
	provider   string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	relayURL   string
	relayKey   string
}

// New creates a Client for the provider named in opts.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		provider:   opts.Provider,
		httpClient: hc,
		timeout:    timeout,
		userAgent:  opts.UserAgent,
		relayURL:   opts.RelayURL,
		relayKey:   opts.RelayKey,
	}
}

// Provider returns the provider name used in errors and metrics.
func (c *Client) Provider() string { return c.provider }

// Response is a raw provider response with its body fully read.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// ProviderError builds the error for a non-2xx response.
func (c *Client) ProviderError(r *Response) error {
	return &models.ProviderError{Provider: c.provider, Status: r.StatusCode, Message: truncate(string(r.Body))}
}

// Do sends the request and returns the response whatever its status.
// Transport failures come back as ErrTimeout or ErrNetwork; a cancelled
// parent context is returned as context.Canceled.
func (c *Client) Do(ctx context.Context, operation, method, rawURL string, body any) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", c.provider, operation, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.target(rawURL), reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", c.provider, operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.relayURL != "" && c.relayKey != "" {
		req.Header.Set(relayKeyHeader, c.relayKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = c.transportError(ctx, operation, err)
		telemetry.ObserveProviderRequest(c.provider, operation, models.Kind(err), time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		err = c.transportError(ctx, operation, err)
		telemetry.ObserveProviderRequest(c.provider, operation, models.Kind(err), time.Since(start))
		return nil, err
	}

	outcome := "ok"
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = fmt.Sprintf("status_%d", resp.StatusCode)
	}
	telemetry.ObserveProviderRequest(c.provider, operation, outcome, time.Since(start))

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// GetJSON issues a GET and decodes a 2xx body into out.
func (c *Client) GetJSON(ctx context.Context, operation, rawURL string, out any) error {
	return c.doJSON(ctx, operation, http.MethodGet, rawURL, nil, out)
}

// PostJSON issues a POST with a JSON body and decodes a 2xx body into out.
func (c *Client) PostJSON(ctx context.Context, operation, rawURL string, body, out any) error {
	return c.doJSON(ctx, operation, http.MethodPost, rawURL, body, out)
}

func (c *Client) doJSON(ctx context.Context, operation, method, rawURL string, body, out any) error {
	resp, err := c.Do(ctx, operation, method, rawURL, body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return c.ProviderError(resp)
	}
	return c.Decode(resp, out)
}

// Decode unmarshals a response body, reporting malformed JSON as a
// provider error.
func (c *Client) Decode(resp *Response, out any) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &models.ProviderError{
			Provider: c.provider,
			Status:   resp.StatusCode,
			Message:  "malformed response: " + err.Error(),
		}
	}
	return nil
}

// target rewrites rawURL through the relay when one is configured.
func (c *Client) target(rawURL string) string {
	if c.relayURL == "" {
		return rawURL
	}
	return c.relayURL + url.QueryEscape(rawURL)
}

func (c *Client) transportError(ctx context.Context, operation string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", c.provider, operation, context.Canceled)
	}
	// url.Error repeats the request URL, which may carry an api key.
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s %s: %v", models.ErrTimeout, c.provider, operation, cause)
	}
	return fmt.Errorf("%w: %s %s: %v", models.ErrNetwork, c.provider, operation, cause)
}

// Transient reports failures worth retrying: transport errors, timeouts
// and HTTP 503.
func Transient(err error) bool {
	if errors.Is(err, models.ErrNetwork) || errors.Is(err, models.ErrTimeout) {
		return true
	}
	var perr *models.ProviderError
	return errors.As(err, &perr) && perr.Status == http.StatusServiceUnavailable
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxMessageLen {
		return s[:maxMessageLen] + "..."
	}
	return s
}
