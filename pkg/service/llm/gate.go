package llm

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Gate paces calls to the AI service for every worker of a run. It combines
// a per-minute token bucket with a shared pause that grows exponentially
// while the provider keeps answering with rate-limit errors.
type Gate struct {
	limiter *rate.Limiter

	mu          sync.Mutex
	initial     time.Duration
	max         time.Duration
	next        time.Duration
	pausedUntil time.Time
}

func NewGate(requestsPerMinute int, initialBackoff, maxBackoff time.Duration) *Gate {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	return &Gate{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		initial: initialBackoff,
		max:     maxBackoff,
		next:    initialBackoff,
	}
}

// Wait blocks until a call may be made: first any shared pause, then the
// rate limiter.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	pause := time.Until(g.pausedUntil)
	g.mu.Unlock()

	if pause > 0 {
		timer := time.NewTimer(pause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return g.limiter.Wait(ctx)
}

// Backoff records a rate-limit response. All workers pause for the returned
// duration, which doubles on every call up to the maximum.
func (g *Gate) Backoff() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	d := g.next
	if until := time.Now().Add(d); until.After(g.pausedUntil) {
		g.pausedUntil = until
	}

	g.next *= 2
	if g.next > g.max {
		g.next = g.max
	}
	if g.next <= 0 {
		g.next = g.initial
	}
	return d
}

// Reset restores the initial backoff after a successful call.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next = g.initial
}
