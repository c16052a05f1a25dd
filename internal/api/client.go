// Package api is the HTTP client for the AutoSense service.
//
// Every request is rate limited, bounded by a timeout, tagged with a
// request id, and run through a circuit breaker so a dead backend is
// reported as offline instead of being hammered. A 401 on an
// authenticated request is surfaced as ErrUnauthorized after the
// OnUnauthorized hook has run; the body of such a response is never read.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/autosense/senseboard/internal/logger"
)

const (
	// DefaultBaseURL is where the AutoSense backend listens by default.
	DefaultBaseURL = "http://127.0.0.1:8000"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxRPS caps outgoing requests per second.
	DefaultMaxRPS = 20

	breakerFailures = 5
	breakerCooldown = 20 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRPS     float64
	HTTPClient *http.Client
	// Token returns the current session token, or "" when logged out.
	Token func() string
	// OnUnauthorized runs when an authenticated request gets a 401.
	OnUnauthorized func()
	Logger         logger.Logger
}

// Client talks to the AutoSense API.
type Client struct {
	base           *url.URL
	http           *http.Client
	timeout        time.Duration
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker
	token          func() string
	onUnauthorized func()
	log            logger.Logger
}

// NewClient creates a client. Zero-valued options take the defaults.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRPS <= 0 {
		opts.MaxRPS = DefaultMaxRPS
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Token == nil {
		opts.Token = func() string { return "" }
	}
	log := logger.OrDefault(opts.Logger)

	c := &Client{
		base:           base,
		http:           opts.HTTPClient,
		timeout:        opts.Timeout,
		limiter:        rate.NewLimiter(rate.Limit(opts.MaxRPS), int(opts.MaxRPS)+1),
		token:          opts.Token,
		onUnauthorized: opts.OnUnauthorized,
		log:            log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "autosense",
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		// Only transport failures and 5xx mean the backend is unhealthy.
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("api: breaker %s %s -> %s", name, from, to)
		},
	})
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Offline reports whether the breaker is currently open.
func (c *Client) Offline() bool {
	return c.breaker.State() == gobreaker.StateOpen
}

// request describes one call.
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	// auth marks calls that require a session; a 401 then means the
	// session is gone rather than "wrong password".
	auth bool
	// public calls never carry the session token.
	public bool
}

// do performs req and decodes a JSON response into out (which may be nil).
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Reason: "rate limited", Err: err}
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, req, out)
	})
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return &Error{Reason: "service unreachable", Offline: true, Err: err}
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, req request, out interface{}) error {
	u := *c.base
	u.Path = c.base.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", req.path, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	token := ""
	if !req.public {
		token = c.token()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
		// Older backends read the raw token from this header.
		httpReq.Header.Set("token", token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Debug("api: %s %s failed after %s: %v", req.method, req.path, time.Since(start), err)
		return &Error{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()
	c.log.Debug("api: %s %s -> %d (%s)", req.method, req.path, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && (req.auth || token != "") {
		_, _ = io.Copy(io.Discard, resp.Body)
		if token != "" && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Status: resp.StatusCode, Reason: "malformed response", Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, query: query, body: body, auth: true}, out)
}
