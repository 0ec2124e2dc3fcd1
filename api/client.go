// Package api is the HTTP layer shared by every portal client: base URL,
// timeout, JSON codec, bearer injection and error mapping.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	RequestIDHeader = "X-Request-ID"
	DefaultTimeout  = 15 * time.Second
	maxErrorBody    = 64 << 10
)

// TokenSource supplies the bearer token for authenticated calls. Returning an
// error matching errors.ErrNotAuthenticated sends the request without one.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) AccessToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// UnauthorizedHandler is invoked when an authenticated call is answered 401.
type UnauthorizedHandler func(ctx context.Context)

// Client issues JSON requests against the portal backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[*http.Response]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

// WithRateLimit throttles outgoing requests to rps per second. Zero or
// negative disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCircuitBreaker fails calls fast after failures consecutive transport
// errors, probing again after timeout. Zero failures disables the breaker.
func WithCircuitBreaker(failures uint32, timeout time.Duration) Option {
	return func(c *Client) {
		if failures == 0 {
			c.breaker = nil
			return
		}
		c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        "portal-api",
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			},
		})
	}
}

// New builds a client for baseURL. Options are applied in order.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from the environment configuration. Extra
// options are applied after the configured ones.
func NewFromConfig(cfg config.Config, opts ...Option) *Client {
	base := []Option{
		WithTimeout(cfg.GetRequestTimeout()),
		WithRateLimit(cfg.GetRateLimit()),
		WithCircuitBreaker(cfg.GetBreakerFailures(), cfg.GetBreakerTimeout()),
	}
	return New(cfg.GetBaseURL(), append(base, opts...)...)
}

// BaseURL is the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Anonymous skips the token source entirely.
	Anonymous bool
	// Bearer, when set, is sent instead of asking the token source.
	Bearer string
	// KeepSession stops a 401 answer from reaching the unauthorized handler.
	// The caller ends the session itself.
	KeepSession bool
}

// Do sends req and decodes a JSON answer into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return errors.Wrapf(err, "[Client.Do] decode %s %s", req.Method, req.Path)
	}
	return nil
}

// Raw sends req and returns the response body as bytes, for file downloads.
func (c *Client) Raw(ctx context.Context, req Request) ([]byte, string, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &errors.NetworkError{Op: req.Method + " " + req.Path, Err: err}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

// GetBlob downloads the body at path.
func (c *Client) GetBlob(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	return c.Raw(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// send performs the round trip and maps failures. On success the caller owns
// the response body.
func (c *Client) send(ctx context.Context, req Request) (*http.Response, error) {
	op := req.Method + " " + req.Path

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	authenticated := httpReq.Header.Get("Authorization") != ""

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrapf(err, "[Client.send] %s rate limit", op)
		}
	}

	requestID := httpReq.Header.Get(RequestIDHeader)
	start := time.Now()
	resp, err := c.roundTrip(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Debug().Err(err).Str("request_id", requestID).Str("method", req.Method).Str("path", req.Path).Msg("portal request failed")
		return nil, &errors.NetworkError{Op: op, Err: err}
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("portal request")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	statusErr := readStatusError(resp)
	if resp.StatusCode == http.StatusUnauthorized && authenticated && !req.KeepSession && c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
	return nil, statusErr
}

func (c *Client) roundTrip(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, err
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "[Client.newRequest] encode %s %s", req.Method, req.Path)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.newRequest] %s %s", req.Method, req.Path)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())

	bearer, err := c.bearer(ctx, req)
	if err != nil {
		return nil, err
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}
	return httpReq, nil
}

func (c *Client) bearer(ctx context.Context, req Request) (string, error) {
	if req.Bearer != "" {
		return req.Bearer, nil
	}
	if req.Anonymous || c.tokens == nil {
		return "", nil
	}
	tok, err := c.tokens.AccessToken(ctx)
	if errors.Is(err, errors.ErrNotAuthenticated) {
		return "", nil
	}
	return tok, err
}

// errorBody covers the error shapes the backend answers with.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func readStatusError(resp *http.Response) *errors.StatusError {
	defer resp.Body.Close()
	statusErr := &errors.StatusError{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return statusErr
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		statusErr.Message = strings.TrimSpace(string(raw))
		return statusErr
	}
	statusErr.Code = body.Error
	statusErr.Message = body.Message
	if statusErr.Message == "" {
		statusErr.Message = body.Detail
	}
	return statusErr
}
