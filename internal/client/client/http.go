package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"github.com/dmitrijs2005/arkadconsole/internal/cryptox"
	"github.com/dmitrijs2005/arkadconsole/internal/logging"
	"github.com/google/uuid"
)

// maxReplyBytes bounds how much of a reply body is read.
const maxReplyBytes = 32 << 20

// TokenSource yields the bearer credential for the current session, or ""
// when nobody is signed in.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Reply is the common response shape of the API.
//
// Success is a pointer because some endpoints omit it; only an explicit
// false is treated as a failure.
type Reply struct {
	Success      *bool           `json:"success,omitempty"`
	Message      string          `json:"message,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	AccessToken  string          `json:"accessToken,omitempty"`
	Transactions json.RawMessage `json:"transactions,omitempty"`
}

// HTTPClient is the API transport.
type HTTPClient struct {
	baseURL string
	key     []byte
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithTokenSource sets where bearer credentials come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient builds a transport for baseURL. key is the shared envelope key.
func NewHTTPClient(baseURL string, key []byte, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  TokenFunc(func() string { return "" }),
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Key returns the shared envelope key.
func (c *HTTPClient) Key() []byte { return c.key }

// Do issues one request and decodes the reply. body may be nil.
func (c *HTTPClient) Do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) (*Reply, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
	}

	log := c.log.With("method", method, "path", path, "request_id", reqID)
	log.Debug(ctx, "request sent")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", common.ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read reply: %w", common.ErrRequestFailed, err)
	}
	log.Debug(ctx, "reply received", "status", resp.StatusCode)

	var reply Reply
	decodeErr := json.Unmarshal(raw, &reply)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn(ctx, "request rejected", "status", resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode, Message: reply.Message}
	}
	if decodeErr != nil && len(bytes.TrimSpace(raw)) > 0 {
		return nil, fmt.Errorf("%w: malformed reply: %w", common.ErrRequestFailed, decodeErr)
	}
	if reply.Success != nil && !*reply.Success {
		log.Warn(ctx, "request unsuccessful", "status", resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode, Message: reply.Message}
	}
	return &reply, nil
}

// GetJSON fetches path and decodes the reply's data field into out.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	reply, err := c.Do(ctx, http.MethodGet, path, query, "", nil)
	if err != nil {
		return err
	}
	return decodeData(reply.Data, out)
}

// GetEncrypted fetches path whose data field is an Envelope, opens it and
// decodes the plaintext into out.
func (c *HTTPClient) GetEncrypted(ctx context.Context, path string, query url.Values, out any) error {
	reply, err := c.Do(ctx, http.MethodGet, path, query, "", nil)
	if err != nil {
		return err
	}
	return c.OpenData(reply.Data, out)
}

// OpenData decrypts an Envelope carried in a reply's data field.
func (c *HTTPClient) OpenData(data json.RawMessage, out any) error {
	var env cryptox.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.IV == "" {
		return fmt.Errorf("%w: reply carries no envelope", common.ErrDecryptionFailed)
	}
	return cryptox.Decrypt(env, c.key, out)
}

// SendJSON sends v as a plain JSON body.
func (c *HTTPClient) SendJSON(ctx context.Context, method, path string, v any) (*Reply, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return c.Do(ctx, method, path, nil, "application/json", bytes.NewReader(body))
}

// SendEncrypted seals v into an Envelope and sends the envelope as JSON.
func (c *HTTPClient) SendEncrypted(ctx context.Context, method, path string, v any) (*Reply, error) {
	env, err := cryptox.Encrypt(v, c.key)
	if err != nil {
		return nil, fmt.Errorf("seal body: %w", err)
	}
	return c.SendJSON(ctx, method, path, env)
}

// SendMultipart sends an already encoded multipart body.
func (c *HTTPClient) SendMultipart(ctx context.Context, method, path, contentType string, body io.Reader) (*Reply, error) {
	return c.Do(ctx, method, path, nil, contentType, body)
}

// Delete issues a DELETE for path.
func (c *HTTPClient) Delete(ctx context.Context, path string) (*Reply, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, "", nil)
}

// Login posts sealed credentials and returns the issued bearer token.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	reply, err := c.SendEncrypted(ctx, http.MethodPost, PathLogin, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	if reply.AccessToken == "" {
		return "", &APIError{Status: http.StatusOK, Message: "login reply carries no access token"}
	}
	return reply.AccessToken, nil
}

func decodeData(data json.RawMessage, out any) error {
	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: malformed data: %w", common.ErrRequestFailed, err)
	}
	return nil
}

// Message extracts a user facing message from err: the server's own text
// for an *APIError, otherwise fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
