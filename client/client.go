// Package client wraps the PrePair backend REST surface. Each endpoint has
// one typed wrapper; all of them share a single request helper and a single
// error classifier, so every failure reaches the caller exactly once as an
// *APIError with a user-facing Korean message. There is no retry logic.
package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
)

// UserIDHeader carries the authenticated identity on API requests.
const UserIDHeader = "X-User-ID"

// Client is a thin handle over the backend API. It is safe for concurrent
// use after construction; SetUserID is expected at sign-in time only.
type Client struct {
	http   *resty.Client
	userID string
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithUserID pre-sets the identity header, e.g. when restoring a session.
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = id }
}

// New creates a client against the given base URL, e.g. "https://api.prepair.kr/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUserID attaches the identity used on authenticated calls.
func (c *Client) SetUserID(id string) { c.userID = id }

// ClearUserID drops the identity, returning the client to anonymous calls.
func (c *Client) ClearUserID() { c.userID = "" }

// envelope is the uniform response wrapper the backend emits.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// parseEnvelope decodes a response body defensively: empty and non-JSON
// bodies yield a nil envelope rather than an error, since error paths must
// still classify by HTTP status alone.
func parseEnvelope(body []byte) *envelope {
	if len(body) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	return &env
}

// call is the one request helper behind every wrapper: it sends the request,
// classifies failures, and decodes the envelope data into T.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T

	req := c.http.R().SetContext(ctx)
	if c.userID != "" {
		req.SetHeader(UserIDHeader, c.userID)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return out, netError(err)
	}

	env := parseEnvelope(resp.Body())
	if resp.IsError() {
		return out, classify(resp.StatusCode(), env)
	}

	if env == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &APIError{
			Kind:       KindServer,
			HTTPStatus: resp.StatusCode(),
			Message:    "응답을 처리하지 못했습니다.",
			cause:      err,
		}
	}
	return out, nil
}
