// Package client is the REST adapter for the onboarding backend. It attaches
// the bearer token, maps failures onto typed errors and applies the global
// 401 policy through a single hook. It never retries.
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

	"github.com/okian/onboard/pkg/logger"
	"github.com/okian/onboard/pkg/metrics"
)

// Client defaults.
const (
	DefaultTimeout   = 10 * time.Second
	defaultUserAgent = "onboard-cli"
	apiPrefix        = "/api/v1"
)

// TokenSource yields the access token for authenticated requests. An empty
// token with a nil error means no session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// UnauthorizedHandler is called once per 401 on an authenticated request.
type UnauthorizedHandler func(ctx context.Context)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler registers the 401 hook.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// Client talks to the onboarding backend.
type Client struct {
	baseURL        string
	rootURL        string
	httpClient     *http.Client
	timeout        time.Duration
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	log            logger.Logger
	userAgent      string
}

// New returns a client for baseURL, e.g. http://localhost:8000/api/v1.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	base := strings.TrimRight(u.String(), "/")
	c := &Client{
		baseURL:    base,
		rootURL:    strings.TrimSuffix(base, apiPrefix),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		log:        logger.Nop(),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Timeout == 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string { return c.baseURL }

// SetUnauthorizedHandler replaces the 401 hook after construction.
func (c *Client) SetUnauthorizedHandler(h UnauthorizedHandler) { c.onUnauthorized = h }

// call describes one request. endpoint is the templated path used for logs
// and metrics.
type call struct {
	method      string
	path        string
	endpoint    string
	body        io.Reader
	contentType string
	length      int64
	auth        bool
	root        bool
}

func (c *Client) jsonCall(method, path, endpoint string, in any) (call, error) {
	cl := call{method: method, path: path, endpoint: endpoint, auth: true}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return call{}, fmt.Errorf("encode %s %s: %w", method, endpoint, err)
		}
		cl.body = bytes.NewReader(b)
		cl.contentType = "application/json"
		cl.length = int64(len(b))
	}
	return cl, nil
}

// do sends cl and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	target := c.baseURL + cl.path
	if cl.root {
		target = c.rootURL + cl.path
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, cl.body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", cl.method, cl.endpoint, err)
	}
	if cl.length > 0 {
		req.ContentLength = cl.length
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.auth && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("%s %s: %w", cl.method, cl.endpoint, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordTransportError(cl.endpoint)
		c.log.Warn(ctx, "request failed",
			logger.String("method", cl.method),
			logger.String("endpoint", cl.endpoint),
			logger.Error(err))
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, cl.method, cl.endpoint, err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	metrics.RecordAPIRequest(cl.endpoint, cl.method, resp.StatusCode, float64(elapsed.Milliseconds()))
	c.log.Debug(ctx, "request completed",
		logger.String("method", cl.method),
		logger.String("endpoint", cl.endpoint),
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", elapsed))

	if resp.StatusCode >= http.StatusBadRequest {
		return c.apiError(ctx, cl, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %s %s: %w", ErrTransport, cl.method, cl.endpoint, err)
		}
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, cl.method, cl.endpoint, err)
	}
	return nil
}

func (c *Client) apiError(ctx context.Context, cl call, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{
		Method:     cl.method,
		Endpoint:   cl.endpoint,
		StatusCode: resp.StatusCode,
		Detail:     parseDetail(body),
		Body:       string(body),
	}
	if resp.StatusCode == http.StatusUnauthorized && cl.auth {
		c.log.Warn(ctx, "session rejected by backend", logger.String("endpoint", cl.endpoint))
		metrics.RecordSessionTeardown()
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
	}
	return apiErr
}
