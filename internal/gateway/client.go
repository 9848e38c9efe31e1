// Package gateway is the HTTP client for the marketplace API. It owns
// header injection, status mapping, and the wire types; the domain
// packages above it never see net/http.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/amberfield/storefront-client/pkg/config"
	pkgerrors "github.com/amberfield/storefront-client/pkg/errors"
	"github.com/amberfield/storefront-client/pkg/logger"
)

const errorBodyReadLimit int64 = 2048

// TokenSource yields the current bearer token, or "" when anonymous.
type TokenSource interface {
	Token() string
}

// Client talks to the marketplace REST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tokens         TokenSource
	logg           *logger.Logger
	onUnauthorized func()
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// New builds a gateway client. tokens may be nil for a client that only
// performs anonymous reads.
func New(cfg config.GatewayConfig, logg *logger.Logger, tokens TokenSource, opts ...Option) (*Client, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}

	client := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tokens:     tokens,
		logg:       logg,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.baseURL == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	return client, nil
}

// SetUnauthorizedHook registers the callback invoked whenever the API
// answers 401. The session store uses it to drop the local token and
// route the user to login.
func (c *Client) SetUnauthorizedHook(hook func()) {
	c.onUnauthorized = hook
}

type request struct {
	method  string
	path    string
	body    any
	headers map[string]string
}

// do executes a request and decodes a JSON body into out when out is
// non-nil. Every non-2xx status comes back as a coded error.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var bodyReader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, bodyReader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	lctx := c.logg.WithRequestID(ctx, requestID)
	c.logg.Debug(c.logg.WithRoute(lctx, req.method+" "+req.path), "gateway request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fmt.Sprintf("%s %s", req.method, req.path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logg.Warn(lctx, "gateway rejected credentials")
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return pkgerrors.New(pkgerrors.CodeAuthRequired, "session expired or invalid")
	}
	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %s", req.method, req.path))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.New(pkgerrors.CodeGateway, fmt.Sprintf("%s %s failed", req.method, req.path)).
			WithDetails(map[string]any{
				"status": resp.StatusCode,
				"body":   strings.TrimSpace(string(msg)),
			})
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "decode response body")
	}
	return nil
}
