package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for outgoing requests.
// An empty string means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// Options tunes the client. Zero values get sane defaults.
type Options struct {
	Timeout time.Duration // Transport timeout, default 15s

	// Circuit breaker over the whole transport. Disabled when MaxFailures
	// is zero. The breaker fails fast, it never retries: every failed
	// attempt stays terminal for its caller.
	BreakerMaxFailures uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
}

// Client is the single HTTP entry point for all data services.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

func New(base string, tokens TokenSource, opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: opts.Timeout},
		tokens: tokens,
		logger: logger.Named("api"),
	}

	if opts.BreakerMaxFailures > 0 {
		c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "mindmesh-api",
			Interval: opts.BreakerInterval,
			Timeout:  opts.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= opts.BreakerMaxFailures
			},
		})
	}

	return c
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do runs one request/response cycle: encode body, attach the bearer token,
// route through the breaker when configured, decode 2xx into out and non-2xx
// into *Error. out may be nil for empty-response endpoints.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	call := func() (any, error) {
		return nil, c.roundTrip(ctx, method, path, body, out)
	}

	if c.cb == nil {
		_, err := call()
		return err
	}

	_, err := c.cb.Execute(call)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		c.logger.Warn("request rejected by circuit breaker",
			zap.String("method", method), zap.String("path", path))
		return &Error{Detail: "service temporarily unavailable", Type: TypeCircuitOpen}
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("transport failure",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &Error{Detail: "", StatusCode: 0, Type: TypeTransport}
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

// decodeError maps a non-2xx response into *Error. A malformed or absent
// body yields an Error with empty Detail so call sites fall back to their
// per-operation message.
func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(raw) > 0 {
		// Ignore decode failures: Detail stays empty, the fallback applies.
		_ = json.Unmarshal(raw, apiErr)
		apiErr.StatusCode = resp.StatusCode
	}
	return apiErr
}
