// Package solverapi is the HTTP client for the 1-Click solver network API:
// the token catalog endpoint and the quote endpoint.
package solverapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Str("component", "solverapi").Logger()
}

// DefaultBaseURL is the public 1-Click endpoint.
const DefaultBaseURL = "https://1click.chaindefuser.com"

// Client talks to a single solver API endpoint. Retry policy is owned by the
// caller (the quote engine); the client performs exactly one request per call.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a solver API client. An empty baseURL selects the public
// endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		log.Fatal().Err(err).Str("url", baseURL).Msg("Failed to parse solver API URL")
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// StatusError is returned for non-2xx responses. The quote engine treats it
// as transient, same as a transport error.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("solver API status %d: %s", e.Code, e.Body)
}

// Tokens fetches the swappable token list.
func (c *Client) Tokens(ctx context.Context) ([]TokenEntry, error) {
	body, err := c.doGet(ctx, "/v0/tokens")
	if err != nil {
		return nil, err
	}

	var entries []TokenEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse token list: %w", err)
	}
	return entries, nil
}

// Quote requests a priced quote. A non-nil error means the request failed at
// the transport or HTTP level; a response carrying Message is a terminal
// solver-side rejection and is returned without error for the engine to
// classify.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quote request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/v0/quote", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("Quote endpoint returned error status")
		return nil, &StatusError{Code: resp.StatusCode, Body: truncateBody(body)}
	}

	var quoteResp QuoteResponse
	if err := json.Unmarshal(body, &quoteResp); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}
	return &quoteResp, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncateBody(body)}
	}
	return body, nil
}

func truncateBody(body []byte) string {
	const limit = 256
	s := string(body)
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
