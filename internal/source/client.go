// Package source fetches raw contributor events from the GitHub REST API.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/credpool"
)

// ResultKind classifies the outcome of one API call.
type ResultKind int

// All result kinds.
const (
	ResultOK ResultKind = iota
	ResultRateLimited
	ResultRetryable
	ResultFatal
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultRateLimited:
		return "rate_limited"
	case ResultRetryable:
		return "retryable"
	default:
		return "fatal"
	}
}

// Result is the typed outcome of one API call.
type Result[T any] struct {
	Kind     ResultKind
	Value    T
	NextPage int
	ResetAt  time.Time
	Err      error
}

// FetchError carries a non-OK result out of the stream.
type FetchError struct {
	Kind       ResultKind
	Repository string
	Phase      Phase
	ResetAt    time.Time
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s %s fetch for %s", e.Kind, e.Phase, e.Repository)
	if !e.ResetAt.IsZero() {
		msg += fmt.Sprintf(" (resets %s)", e.ResetAt.Format(time.RFC3339))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Pool is the subset of the credential pool the client needs.
type Pool interface {
	Acquire(ctx context.Context) (*credpool.Credential, error)
	ReportRateLimited(c *credpool.Credential, resetAt time.Time)
	ReportRemaining(c *credpool.Credential, remaining int, resetAt time.Time)
	Release(c *credpool.Credential)
}

// Client fetches pages from the source API with credential rotation and backoff.
type Client struct {
	pool         Pool
	httpClient   *http.Client
	baseURL      *url.URL
	perPage      int
	maxRetries   int
	maxRotations int
	backoff      time.Duration
	maxBackoff   time.Duration
	clock        contract.Clock
	logger       *slog.Logger

	mu      sync.Mutex
	clients map[string]*github.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as GitHub Enterprise or a test server.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if raw == "" {
			return
		}
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

// WithHTTPClient sets the transport client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithPerPage sets the page size of list calls.
func WithPerPage(n int) Option {
	return func(c *Client) { c.perPage = n }
}

// WithMaxRetries bounds attempts for 5xx and network failures.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithMaxRotations bounds how many times a rate limited call moves to another credential.
func WithMaxRotations(n int) Option {
	return func(c *Client) { c.maxRotations = n }
}

// WithBackoff sets the first retry delay and its cap.
func WithBackoff(base, ceiling time.Duration) Option {
	return func(c *Client) { c.backoff, c.maxBackoff = base, ceiling }
}

// WithClock overrides the wall clock.
func WithClock(clock contract.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a source client drawing credentials from pool.
func NewClient(pool Pool, opts ...Option) *Client {
	c := &Client{
		pool:         pool,
		httpClient:   &http.Client{Timeout: contract.DefaultRequestTimeout},
		perPage:      contract.DefaultPerPage,
		maxRetries:   contract.DefaultMaxRetries,
		maxRotations: contract.DefaultMaxRotations,
		backoff:      500 * time.Millisecond,
		maxBackoff:   30 * time.Second,
		clock:        contract.SystemClock{},
		logger:       contract.DiscardLogger(),
		clients:      make(map[string]*github.Client),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// githubFor returns a GitHub client authenticated with the credential.
func (c *Client) githubFor(cred *credpool.Credential) *github.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gh, ok := c.clients[cred.Token]; ok {
		return gh
	}
	gh := github.NewClient(c.httpClient).WithAuthToken(cred.Token)
	if c.baseURL != nil {
		base := *c.baseURL
		gh.BaseURL = &base
	}
	c.clients[cred.Token] = gh
	return gh
}

// call runs fn with a leased credential. Rate limits rotate to another
// credential up to maxRotations times. Server and network failures retry
// with exponential backoff up to maxRetries attempts.
func call[T any](ctx context.Context, c *Client, fn func(ctx context.Context, gh *github.Client) (T, *github.Response, error)) Result[T] {
	var (
		zero      T
		rotations int
		attempts  int
	)
	for {
		cred, err := c.pool.Acquire(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Result[T]{Kind: ResultFatal, Err: ctx.Err()}
			}
			return Result[T]{Kind: ResultRetryable, Err: err}
		}
		if err := cred.Wait(ctx); err != nil {
			c.pool.Release(cred)
			return Result[T]{Kind: ResultFatal, Err: err}
		}

		value, resp, err := fn(ctx, c.githubFor(cred))
		res := classify(err, resp, c.clock.Now())

		switch res.Kind {
		case ResultOK:
			if resp != nil && resp.Rate.Limit > 0 {
				c.pool.ReportRemaining(cred, resp.Rate.Remaining, resp.Rate.Reset.Time)
			}
			c.pool.Release(cred)
			next := 0
			if resp != nil {
				next = resp.NextPage
			}
			return Result[T]{Kind: ResultOK, Value: value, NextPage: next}

		case ResultRateLimited:
			c.pool.ReportRateLimited(cred, res.ResetAt)
			c.pool.Release(cred)
			rotations++
			c.logger.Warn("rate limited, rotating credential",
				"credential", cred.Masked(), "rotation", rotations, "resetAt", res.ResetAt)
			if rotations > c.maxRotations {
				return Result[T]{Kind: ResultRateLimited, Value: zero, ResetAt: res.ResetAt, Err: res.Err}
			}

		case ResultRetryable:
			c.pool.Release(cred)
			attempts++
			if attempts >= c.maxRetries {
				return Result[T]{Kind: ResultFatal, Err: fmt.Errorf("giving up after %d attempts: %w", attempts, res.Err)}
			}
			delay := c.backoffFor(attempts)
			c.logger.Warn("transient source failure, backing off",
				"attempt", attempts, "delay", delay, "error", res.Err)
			if err := sleep(ctx, delay); err != nil {
				return Result[T]{Kind: ResultFatal, Err: err}
			}

		default:
			c.pool.Release(cred)
			return Result[T]{Kind: ResultFatal, Err: res.Err}
		}
	}
}

// backoffFor returns the delay before retry number attempt (1-based).
func (c *Client) backoffFor(attempt int) time.Duration {
	d := c.backoff
	for i := 1; i < attempt && d < c.maxBackoff; i++ {
		d *= 2
	}
	return min(d, c.maxBackoff)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// classify maps a go-github error onto a result kind.
func classify(err error, resp *github.Response, now time.Time) Result[struct{}] {
	if err == nil {
		return Result[struct{}]{Kind: ResultOK}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Result[struct{}]{Kind: ResultFatal, Err: err}
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return Result[struct{}]{Kind: ResultRateLimited, ResetAt: rateErr.Rate.Reset.Time, Err: err}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		reset := now.Add(time.Minute)
		if abuseErr.RetryAfter != nil {
			reset = now.Add(*abuseErr.RetryAfter)
		}
		return Result[struct{}]{Kind: ResultRateLimited, ResetAt: reset, Err: err}
	}

	status := 0
	var header http.Header
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		status = errResp.Response.StatusCode
		header = errResp.Response.Header
	} else if resp != nil && resp.Response != nil {
		status = resp.StatusCode
		header = resp.Header
	}

	switch {
	case status == http.StatusTooManyRequests || status == http.StatusForbidden:
		// A bare 403 is a secondary limit more often than a permission problem.
		return Result[struct{}]{Kind: ResultRateLimited, ResetAt: resetFromHeader(header, now), Err: err}
	case status >= 500:
		return Result[struct{}]{Kind: ResultRetryable, Err: err}
	case status != 0:
		return Result[struct{}]{Kind: ResultFatal, Err: err}
	default:
		// No HTTP response at all: network failure.
		return Result[struct{}]{Kind: ResultRetryable, Err: err}
	}
}

// resetFromHeader reads Retry-After or X-RateLimit-Reset. Zero means unknown.
func resetFromHeader(h http.Header, now time.Time) time.Time {
	if h == nil {
		return time.Time{}
	}
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return now.Add(time.Duration(secs) * time.Second)
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(epoch, 0).UTC()
		}
	}
	return time.Time{}
}
