package crawl

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// PolitenessLimiter enforces a fixed delay between successive requests to
// the same host using a token bucket with a burst of one. The first request
// to a host passes immediately; each subsequent one waits out the delay.
type PolitenessLimiter struct {
	limiters map[string]*rate.Limiter
	delay    time.Duration
}

// NewPolitenessLimiter creates a limiter with the given inter-fetch delay.
func NewPolitenessLimiter(delay time.Duration) *PolitenessLimiter {
	return &PolitenessLimiter{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

// Wait blocks until the delay since the last request to the host has
// elapsed. Returns an error only if the context is canceled first.
func (p *PolitenessLimiter) Wait(ctx context.Context, host string) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	limiter, ok := p.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(p.delay), 1)
		p.limiters[host] = limiter
	}
	return limiter.Wait(ctx)
}
