package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

// Error is the single error shape produced by the client. Status is 0 when
// the request never produced a response.
type Error struct {
	Method   string
	Endpoint string
	Status   int
	Message  string
	// Remote is set when Message was taken from the response body.
	Remote bool
	Err    error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Message returns the backend's message for err, or fallback when the failure
// carried none.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Remote {
		return apiErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to the habit backend. Every request carries the session
// cookies held in its jar.
type Client struct {
	base *url.URL
	http *http.Client
	jar  http.CookieJar
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is replaced by
// the client's own jar so credentials keep flowing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		copied := *hc
		c.http = &copied
	}
}

// New returns a client rooted at baseURL (e.g. "http://localhost:5000/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = constants.DefaultAPIURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		base: u,
		http: &http.Client{Timeout: constants.RequestTimeout},
		jar:  jar,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Jar = c.jar
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Do sends a JSON request to endpoint (relative to the base URL) and decodes
// the response into out. A nil body sends no payload; a nil out discards the
// response body.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	requestID := uuid.NewString()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(endpoint), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.RequestIDHeader, requestID)

	logger.Debug("API request", "method", method, "endpoint", endpoint, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := &Error{
			Method:   method,
			Endpoint: endpoint,
			Message:  fmt.Sprintf("%s: %v", constants.MsgRequestFailedBase, err),
			Err:      err,
		}
		logger.Error("API call failed", "endpoint", endpoint, "method", method, "request_id", requestID, "error", err)
		return apiErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := &Error{
			Method:   method,
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("%s: %v", constants.MsgRequestFailedBase, err),
			Err:      err,
		}
		logger.Error("API call failed", "endpoint", endpoint, "method", method, "request_id", requestID, "error", err)
		return apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, remote := errorMessage(data, resp.StatusCode)
		apiErr := &Error{
			Method:   method,
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  msg,
			Remote:   remote,
		}
		logger.Error("API call failed", "endpoint", endpoint, "method", method, "status", resp.StatusCode, "request_id", requestID, "error", apiErr.Message)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Error("API response decode failed", "endpoint", endpoint, "request_id", requestID, "error", err)
		return &Error{
			Method:   method,
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("invalid response from %s: %v", endpoint, err),
			Err:      err,
		}
	}
	return nil
}

func (c *Client) resolve(endpoint string) string {
	rel, err := url.Parse(endpoint)
	if err != nil {
		return c.base.String() + endpoint
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(rel.Path, "/")
	u.RawQuery = rel.RawQuery
	return u.String()
}

// errorMessage extracts the "message" field from an error body, falling back
// to a generic message annotated with the status code.
func errorMessage(body []byte, status int) (string, bool) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message, true
		}
	}
	return fmt.Sprintf("%s: HTTP %d", constants.MsgRequestFailedBase, status), false
}
