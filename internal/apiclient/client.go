// Package apiclient is the portal's only road to the remote RBAC API.
// Every call is either public (login, invite validation, invite
// registration) or privileged (bearer credential attached). The layer
// never retries, never refreshes tokens, and never decides to log the
// user out; failures surface to the caller.
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
)

var (
	ErrUnauthorized = errors.New("upstream rejected credentials")
	ErrForbidden    = errors.New("upstream denied access")
	ErrNotFound     = errors.New("upstream resource not found")
)

// APIError is a non-2xx response from the upstream API, carrying the
// server-supplied message when one was present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: HTTP %d", e.StatusCode)
}

// Unwrap maps well-known statuses onto sentinel errors so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// TokenSource supplies the current bearer credential at call time (pull
// model). Returning "" means no session; the call is still attempted with
// no credential attached and the API owns the rejection.
type TokenSource func(ctx context.Context) string

type tokenKey struct{}

// WithToken stores the session's bearer token on the context for the
// duration of one request.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext is the default TokenSource: the token the current
// request's session carried, or "" when logged out.
func TokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// Config holds upstream API client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Tokens overrides the credential source; defaults to TokenFromContext.
	Tokens TokenSource
}

// Client calls the remote RBAC API
type Client struct {
	baseURL string
	timeout time.Duration
	tokens  TokenSource
	http    *http.Client
}

// New creates an API client with a tuned transport
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = TokenFromContext
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		tokens:  tokens,
		http:    &http.Client{Transport: transport},
	}
}

// upstream error envelope: either {success,error:{code,message}} or a
// flat {message}, depending on the API version.
type errorEnvelope struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do issues one call. privileged controls whether the current bearer
// token is attached; body and out are optional JSON payloads.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, privileged bool) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if privileged {
		if tok := c.tokens(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeoutError(err) {
			return fmt.Errorf("upstream timed out: %w", err)
		}
		if isConnectionError(err) {
			return fmt.Errorf("upstream unavailable: %w", err)
		}
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(raw) > 0 {
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil {
			if env.Error != nil {
				apiErr.Code = env.Error.Code
				apiErr.Message = env.Error.Message
			} else {
				apiErr.Message = env.Message
			}
		}
	}
	return apiErr
}

// isTimeoutError checks if error is a timeout
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// isConnectionError checks if error is a connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "no such host")
}
