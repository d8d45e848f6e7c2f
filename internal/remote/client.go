package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Client talks to an organization's API: GraphQL for queries and mutations,
// plain JSON endpoints for the session routes.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l.Named("remote") }
}

// WithToken sets the initial access token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API rooted at baseURL
// (e.g. https://api.example.tides.coloredcow.com/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ErrNoServer is returned when a request is made before a base URL is set.
var ErrNoServer = errors.New("no server selected")

// BaseURL returns the API root requests go to.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL points the client at another API root.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.mu.Unlock()
}

// SetToken replaces the access token sent with GraphQL requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Authenticated reports whether an access token is set.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

type graphQLRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// do executes a GraphQL operation and decodes its data into out.
func (c *Client) do(ctx context.Context, doc *document, vars map[string]any, out any) error {
	if err := doc.check(vars); err != nil {
		return err
	}
	body, err := json.Marshal(graphQLRequest{OperationName: doc.name, Query: doc.query, Variables: vars})
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", doc.name, err)
	}

	var resp graphQLResponse
	if err := c.post(ctx, doc.name, "", body, true, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		e := &Error{Op: doc.name}
		for _, ge := range resp.Errors {
			e.Messages = append(e.Messages, ge.Message)
		}
		return e
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", doc.name, err)
	}
	return nil
}

// post sends a JSON body to path under the base URL and decodes the JSON
// response into out.
func (c *Client) post(ctx context.Context, op, path string, body []byte, auth bool, out any) error {
	base := c.BaseURL()
	if base == "" {
		return fmt.Errorf("%s: %w", op, ErrNoServer)
	}
	url := base + path
	reqID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if auth {
		c.mu.RLock()
		token := c.token
		c.mu.RUnlock()
		if token != "" {
			req.Header.Set("Authorization", token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.String("request_id", reqID), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request done",
		zap.String("op", op),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode >= 300 {
		return &Error{Op: op, Messages: []string{restErrorMessage(data, resp.Status)}}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// restErrorMessage pulls {"error":{"message":...}} out of an error body.
func restErrorMessage(data []byte, status string) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return status
}
