package bookmarks

import (
	"context"
	"fmt"
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// sleepFunc blocks for d or until ctx is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// unboundedWait stands in for "no ceiling". It is a power of two so the
// float clamp inside BackoffConfig.Duration converts back exactly.
const unboundedWait = time.Duration(1 << 62)

// RateLimiter escalates the wait after each 429 response. The attempt count
// survives across runs until Reset is called after a fully successful run.
type RateLimiter struct {
	mu      sync.Mutex
	backoff stealth.BackoffConfig
	attempt int
	sleep   sleepFunc
}

// NewRateLimiter returns a limiter starting at initial and doubling on every
// 429. max caps the wait; zero leaves it unbounded.
func NewRateLimiter(initial, max time.Duration) *RateLimiter {
	if max <= 0 {
		max = unboundedWait
	}
	return &RateLimiter{
		backoff: stealth.BackoffConfig{
			InitialWait: initial,
			MaxWait:     max,
			Multiplier:  2,
		},
		sleep: sleepCtx,
	}
}

// Wait returns the duration the next HandleRateLimit call will sleep.
func (rl *RateLimiter) Wait() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.backoff.Duration(rl.attempt)
}

// HandleRateLimit reports the upcoming wait, sleeps for it and escalates.
// An interrupted sleep does not escalate.
func (rl *RateLimiter) HandleRateLimit(ctx context.Context, report func(string)) error {
	wait := rl.Wait()

	report(fmt.Sprintf("Rate limit reached. Waiting for %d seconds before retrying...", int(wait/time.Second)))

	if err := rl.sleep(ctx, wait); err != nil {
		return err
	}

	rl.mu.Lock()
	rl.attempt++
	rl.mu.Unlock()
	return nil
}

// Reset restores the initial wait.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	rl.attempt = 0
	rl.mu.Unlock()
}
