package galleryclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sagarc03/galleria"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps API response bodies.
	maxResponseBytes = 1 << 20
)

// Client talks to a galleria server.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	// Apply defaults
	cfg = cfg.WithDefaults()

	c := &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Manifest is the server-side image list.
type Manifest struct {
	Directory string   `json:"directory"`
	Images    []string `json:"images"`
}

// SignedURL asks the server for a signed URL of ref. An error reported by
// the server is returned as *APIError.
func (c *Client) SignedURL(ctx context.Context, ref galleria.ImageRef) (string, error) {
	q := url.Values{}
	q.Set("directory", ref.Directory)
	q.Set("filename", ref.Filename)
	q.Set("original", strconv.FormatBool(ref.Resolution == galleria.ResolutionOriginal))

	var body struct {
		SignedURL string `json:"signedUrl"`
	}
	if err := c.get(ctx, "/api/signed-url?"+q.Encode(), &body); err != nil {
		return "", fmt.Errorf("signed url %s: %w", ref.Key(), err)
	}
	if body.SignedURL == "" {
		return "", fmt.Errorf("signed url %s: %w: missing signedUrl", ref.Key(), ErrInvalidResponse)
	}

	return body.SignedURL, nil
}

// Images fetches the image manifest configured on the server.
func (c *Client) Images(ctx context.Context) (Manifest, error) {
	var m Manifest
	if err := c.get(ctx, "/api/images", &m); err != nil {
		return Manifest{}, fmt.Errorf("images: %w", err)
	}
	return m, nil
}

func (c *Client) get(ctx context.Context, pathAndQuery string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+pathAndQuery, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseServerError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func parseServerError(statusCode int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return fmt.Errorf("%w: status %d", ErrInvalidResponse, statusCode)
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    payload.Error,
		Details:    payload.Details,
	}
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Message
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
var (
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}
	ErrNotFound   = &APIError{StatusCode: http.StatusNotFound}
	ErrServer     = &APIError{StatusCode: http.StatusInternalServerError}
)

// ErrorDetails returns the technical detail attached to err by the server,
// if any.
func ErrorDetails(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Details
	}
	return ""
}
