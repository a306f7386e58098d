// Package transport issues HTTP requests against the storefront API.
// It attaches the bearer token from persistent storage, normalizes error
// responses into a single human-readable message, and raises a
// session-expired signal when an authenticated request is rejected.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joss/flashmart/internal/kvstore"
	"github.com/joss/flashmart/internal/logging"
)

// Persisted credential keys. Declared here rather than in the session
// package so the client can clear credentials on 401 without importing it.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// HTTPClient interface for HTTP requests (enables testing)
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Verify http.Client implements HTTPClient
var _ HTTPClient = (*http.Client)(nil)

// Client is the single request-issuing facade for the storefront API.
type Client struct {
	baseURL string
	http    HTTPClient
	kv      *kvstore.Store
	log     *logging.Logger
	expired []func()
}

func New(baseURL string, kv *kvstore.Store, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, kv, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, kv *kvstore.Store, hc HTTPClient) *Client {
	return &Client{
		baseURL: baseURL,
		http:    hc,
		kv:      kv,
		log:     logging.New("transport"),
	}
}

// OnSessionExpired registers a handler invoked every time an authenticated
// request comes back 401. Handlers run synchronously, once per failed request.
func (c *Client) OnSessionExpired(fn func()) {
	c.expired = append(c.expired, fn)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do issues a request and returns the raw response body. Non-2xx responses
// come back as *APIError with a normalized message. The bearer token is
// re-read from storage on every call since tokens rotate.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	token := c.currentToken(ctx)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("request", map[string]interface{}{"method": method, "path": path}, err)
		return nil, &APIError{Kind: KindNetwork, Message: MsgRequestFailed}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: MsgRequestFailed}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.clearCredentials(ctx)
			for _, fn := range c.expired {
				fn()
			}
		}
		apiErr := classify(resp.StatusCode, data)
		c.log.Warn("request", map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}, apiErr)
		return nil, apiErr
	}

	c.log.TimedEvent("request", start, map[string]interface{}{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	})
	return json.RawMessage(data), nil
}

// currentToken reads the bearer token from storage at call time.
func (c *Client) currentToken(ctx context.Context) string {
	token, err := c.kv.Get(ctx, KeyToken)
	if err != nil {
		if !kvstore.IsNotFound(err) {
			c.log.Warn("read_token", nil, err)
		}
		return ""
	}
	return token
}

// clearCredentials wipes persisted token, refresh token, and user.
func (c *Client) clearCredentials(ctx context.Context) {
	if err := c.kv.DeleteMany(ctx, KeyToken, KeyRefreshToken, KeyUser); err != nil {
		c.log.Warn("clear_credentials", nil, err)
	}
}
