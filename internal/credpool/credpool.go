// Package credpool rotates source API tokens to stay under per-token rate limits.
package credpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/huangsam/contriboard/internal/contract"
	"golang.org/x/time/rate"
)

// DefaultPenalty is how long a credential rests when the source reports a
// rate limit without a usable reset time.
const DefaultPenalty = time.Minute

// Credential is one API token leased from the pool.
type Credential struct {
	Index   int
	Token   string
	limiter *rate.Limiter
}

// Wait blocks until the credential's client-side throttle allows a request.
func (c *Credential) Wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Masked returns the token with everything but the last four characters hidden.
func (c *Credential) Masked() string {
	return maskToken(c.Token)
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

// CredentialStatus is a point-in-time view of one credential.
type CredentialStatus struct {
	Index     int       `json:"index"`
	Token     string    `json:"token"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt,omitzero"`
	Exhausted bool      `json:"exhausted"`
	InUse     bool      `json:"inUse"`
}

type slot struct {
	cred           *Credential
	remaining      int // -1 until the source reports it
	resetAt        time.Time
	exhaustedUntil time.Time
	inUse          bool
}

func (s *slot) exhausted(now time.Time) bool {
	return s.exhaustedUntil.After(now)
}

// Pool hands out credentials so concurrent callers never share one.
type Pool struct {
	mu        sync.Mutex
	slots     []*slot
	changed   chan struct{}
	threshold int
	timeout   time.Duration
	rps       float64
	penalty   time.Duration
	clock     contract.Clock
	logger    *slog.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithThreshold treats a credential as exhausted once its remaining quota drops below n.
func WithThreshold(n int) Option {
	return func(p *Pool) { p.threshold = n }
}

// WithAcquireTimeout bounds how long Acquire blocks when every credential is busy or exhausted.
func WithAcquireTimeout(d time.Duration) Option {
	return func(p *Pool) { p.timeout = d }
}

// WithRequestsPerSecond throttles each credential on the client side. Zero disables throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(p *Pool) { p.rps = rps }
}

// WithPenalty sets how long a credential rests when no reset time is known.
func WithPenalty(d time.Duration) Option {
	return func(p *Pool) { p.penalty = d }
}

// WithClock overrides the wall clock used for reset bookkeeping.
func WithClock(c contract.Clock) Option {
	return func(p *Pool) { p.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// New builds a pool over the given tokens.
func New(tokens []string, opts ...Option) (*Pool, error) {
	if len(tokens) == 0 {
		return nil, contract.ErrNoCredentials
	}
	p := &Pool{
		changed:   make(chan struct{}),
		threshold: contract.DefaultRateLimitThreshold,
		timeout:   contract.DefaultAcquireTimeout,
		penalty:   DefaultPenalty,
		clock:     contract.SystemClock{},
		logger:    contract.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i, tok := range tokens {
		limiter := rate.NewLimiter(rate.Inf, 1)
		if p.rps > 0 {
			limiter = rate.NewLimiter(rate.Limit(p.rps), max(1, int(p.rps)))
		}
		p.slots = append(p.slots, &slot{
			cred:      &Credential{Index: i, Token: tok, limiter: limiter},
			remaining: -1,
		})
	}
	return p, nil
}

// Size returns the number of credentials in the pool.
func (p *Pool) Size() int {
	return len(p.slots)
}

// Acquire leases the usable credential with the earliest known reset time.
// It blocks while every credential is leased or exhausted, waking on release
// or on the next reset, and fails with contract.ErrAcquireTimeout once the
// configured timeout passes.
func (p *Pool) Acquire(ctx context.Context) (*Credential, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, p.timeout, contract.ErrAcquireTimeout)
		defer cancel()
	}

	for {
		p.mu.Lock()
		now := p.clock.Now()
		if s := p.pick(now); s != nil {
			s.inUse = true
			p.mu.Unlock()
			return s.cred, nil
		}
		wake := p.changed
		wait := p.untilNextReset(now)
		p.mu.Unlock()

		if err := waitForChange(ctx, wake, wait); err != nil {
			if errors.Is(context.Cause(ctx), contract.ErrAcquireTimeout) {
				return nil, fmt.Errorf("%w after %s", contract.ErrAcquireTimeout, p.timeout)
			}
			return nil, err
		}
	}
}

// waitForChange blocks until wake closes, wait elapses or ctx ends.
// A non-positive wait means there is no scheduled reset to wait for.
func waitForChange(ctx context.Context, wake <-chan struct{}, wait time.Duration) error {
	var timerC <-chan time.Time
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		timerC = timer.C
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wake:
	case <-timerC:
	}
	return nil
}

// pick returns the free, unexhausted slot with the earliest reset time.
func (p *Pool) pick(now time.Time) *slot {
	var best *slot
	for _, s := range p.slots {
		if s.inUse || s.exhausted(now) {
			continue
		}
		if best == nil || s.resetAt.Before(best.resetAt) {
			best = s
		}
	}
	return best
}

// untilNextReset returns how long until the earliest exhausted free slot recovers.
func (p *Pool) untilNextReset(now time.Time) time.Duration {
	var next time.Time
	for _, s := range p.slots {
		if s.inUse || !s.exhausted(now) {
			continue
		}
		if next.IsZero() || s.exhaustedUntil.Before(next) {
			next = s.exhaustedUntil
		}
	}
	if next.IsZero() {
		return 0
	}
	return next.Sub(now)
}

// broadcast wakes every blocked Acquire. Callers hold p.mu.
func (p *Pool) broadcast() {
	close(p.changed)
	p.changed = make(chan struct{})
}

func (p *Pool) slotFor(c *Credential) *slot {
	if c == nil || c.Index < 0 || c.Index >= len(p.slots) || p.slots[c.Index].cred != c {
		return nil
	}
	return p.slots[c.Index]
}

// ReportRateLimited marks a credential exhausted until resetAt.
func (p *Pool) ReportRateLimited(c *Credential, resetAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.slotFor(c)
	if s == nil {
		return
	}
	now := p.clock.Now()
	if !resetAt.After(now) {
		resetAt = now.Add(p.penalty)
	}
	s.remaining = 0
	s.resetAt = resetAt
	s.exhaustedUntil = resetAt
	p.logger.Warn("credential rate limited", "credential", c.Masked(), "resetAt", resetAt)
	p.broadcast()
}

// ReportRemaining records the quota the source reported after a request.
// Dropping below the threshold rests the credential until resetAt.
func (p *Pool) ReportRemaining(c *Credential, remaining int, resetAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.slotFor(c)
	if s == nil {
		return
	}
	s.remaining = remaining
	if !resetAt.IsZero() {
		s.resetAt = resetAt
	}
	if remaining < p.threshold && resetAt.After(p.clock.Now()) {
		s.exhaustedUntil = resetAt
		p.logger.Info("credential below threshold", "credential", c.Masked(), "remaining", remaining, "resetAt", resetAt)
	}
}

// Release returns a credential to the pool.
func (p *Pool) Release(c *Credential) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.slotFor(c)
	if s == nil || !s.inUse {
		return
	}
	s.inUse = false
	p.broadcast()
}

// Status reports the state of every credential.
func (p *Pool) Status() []CredentialStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.clock.Now()
	out := make([]CredentialStatus, 0, len(p.slots))
	for _, s := range p.slots {
		out = append(out, CredentialStatus{
			Index:     s.cred.Index,
			Token:     s.cred.Masked(),
			Remaining: s.remaining,
			ResetAt:   s.resetAt,
			Exhausted: s.exhausted(now),
			InUse:     s.inUse,
		})
	}
	return out
}
