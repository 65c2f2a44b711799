package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sweetshop/sweetshop/application/port/outbound"
	domainerror "github.com/sweetshop/sweetshop/domain/error"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	DefaultTimeout      = 10 * time.Second
	maxResponseBytes    = 10 << 20
)

// HTTPDoer is the subset of *http.Client the adapter needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client sends JSON requests to the REST API. Before every request it asks
// the token source for a bearer token. It never retries or refreshes tokens;
// non-2xx responses come back as *domainerror.APIError.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient HTTPDoer
	tokens     outbound.TokenSource
	logger     logger.Logger
}

func New(cfg Config, tokens outbound.TokenSource, log logger.Logger) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewWithDoer(cfg, &http.Client{Timeout: timeout}, tokens, log)
}

func NewWithDoer(cfg Config, doer HTTPDoer, tokens outbound.TokenSource, log logger.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, domainerror.ErrConfiguration("api base url", fmt.Errorf("invalid base URL %q", cfg.BaseURL))
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "sweetshop-client"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  ua,
		httpClient: doer,
		tokens:     tokens,
		logger:     log,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"method":        method,
		"path":          path,
		"authenticated": req.Header.Get("Authorization") != "",
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	logger.LogPerformance(ctx, c.logger, "api_request", time.Since(start), fields)
	if err != nil {
		c.logger.Error(ctx, "API request failed", err, fields)
		return domainerror.ErrTransport(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Error(ctx, "Failed to read API response", err, fields)
		return domainerror.ErrTransport(fmt.Sprintf("%s %s: reading body", method, path), err)
	}

	fields["status"] = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn(ctx, "API returned error status", fields)
		return domainerror.NewAPIError(method, path, resp.StatusCode, raw)
	}

	c.logger.Debug(ctx, "API request completed", fields)

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domainerror.ErrMalformedResponse(fmt.Sprintf("%s %s", method, path), err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, domainerror.ErrRequestBuild("encode body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, domainerror.ErrRequestBuild(fmt.Sprintf("%s %s", method, path), err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	cid := logger.CorrelationID(ctx)
	if cid == "" {
		cid = uuid.NewString()
	}
	req.Header.Set(CorrelationIDHeader, cid)

	if c.tokens != nil {
		if token, ok := c.tokens.AccessToken(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}
