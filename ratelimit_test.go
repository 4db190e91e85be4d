package bookmarks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSleeper records requested sleeps and returns immediately.
type fakeSleeper struct {
	slept []time.Duration
}

func (f *fakeSleeper) sleep(ctx context.Context, d time.Duration) error {
	f.slept = append(f.slept, d)
	return ctx.Err()
}

func TestRateLimiter_Doubles(t *testing.T) {
	fs := &fakeSleeper{}
	rl := NewRateLimiter(60*time.Second, 0)
	rl.sleep = fs.sleep

	var msgs []string
	report := func(m string) { msgs = append(msgs, m) }

	require.NoError(t, rl.HandleRateLimit(context.Background(), report))
	require.NoError(t, rl.HandleRateLimit(context.Background(), report))

	assert.Equal(t, []time.Duration{60 * time.Second, 120 * time.Second}, fs.slept)
	assert.Equal(t, []string{
		"Rate limit reached. Waiting for 60 seconds before retrying...",
		"Rate limit reached. Waiting for 120 seconds before retrying...",
	}, msgs)
	assert.Equal(t, 240*time.Second, rl.Wait())
}

func TestRateLimiter_Cap(t *testing.T) {
	fs := &fakeSleeper{}
	rl := NewRateLimiter(60*time.Second, 90*time.Second)
	rl.sleep = fs.sleep

	for range 3 {
		require.NoError(t, rl.HandleRateLimit(context.Background(), func(string) {}))
	}
	assert.Equal(t, []time.Duration{60 * time.Second, 90 * time.Second, 90 * time.Second}, fs.slept)
}

func TestRateLimiter_Reset(t *testing.T) {
	fs := &fakeSleeper{}
	rl := NewRateLimiter(time.Minute, 0)
	rl.sleep = fs.sleep

	require.NoError(t, rl.HandleRateLimit(context.Background(), func(string) {}))
	assert.Equal(t, 2*time.Minute, rl.Wait())
	rl.Reset()
	assert.Equal(t, time.Minute, rl.Wait())
}

func TestRateLimiter_Cancelled(t *testing.T) {
	rl := NewRateLimiter(time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.HandleRateLimit(ctx, func(string) {})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, time.Hour, rl.Wait(), "wait must not grow when the sleep is interrupted")
}

func TestRateLimiter_UnboundedKeepsDoubling(t *testing.T) {
	fs := &fakeSleeper{}
	rl := NewRateLimiter(time.Second, 0)
	rl.sleep = fs.sleep

	for range 70 {
		require.NoError(t, rl.HandleRateLimit(context.Background(), func(string) {}))
	}
	assert.Equal(t, 1024*time.Second, fs.slept[10])
	for i := 1; i < len(fs.slept); i++ {
		assert.GreaterOrEqual(t, fs.slept[i], fs.slept[i-1], "wait must never shrink (attempt %d)", i)
	}
	assert.Positive(t, rl.Wait())
}
