package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRateLimiter(limit int, window time.Duration) (*RateLimiter, *time.Time) {
	now := time.Now()
	l := NewRateLimiter(limit, window, 128)
	l.nowFunc = func() time.Time { return now }
	return l, &now
}

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	l, _ := newTestRateLimiter(5, 60*time.Second)

	for i := 0; i < 5; i++ {
		allowed, _ := l.Check("fp0")
		require.True(t, allowed)
		l.Consume("fp0")
	}

	allowed, resetTime := l.Check("fp0")
	require.False(t, allowed)
	require.Equal(t, 60, resetTime)
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	l, now := newTestRateLimiter(5, 60*time.Second)

	for i := 0; i < 5; i++ {
		l.Consume("fp0")
	}

	*now = now.Add(30 * time.Second)
	allowed, resetTime := l.Check("fp0")
	require.False(t, allowed)
	require.Equal(t, 30, resetTime)

	// the whole window expires at once; all five entries share a timestamp
	*now = now.Add(31 * time.Second)
	allowed, _ = l.Check("fp0")
	require.True(t, allowed)
}

func TestRateLimiterResetTimeRoundsUp(t *testing.T) {
	l, now := newTestRateLimiter(1, 60*time.Second)

	l.Consume("fp0")

	*now = now.Add(59*time.Second + 500*time.Millisecond)
	allowed, resetTime := l.Check("fp0")
	require.False(t, allowed)
	require.Equal(t, 1, resetTime)
}

func TestRateLimiterIsPerFingerprint(t *testing.T) {
	l, _ := newTestRateLimiter(1, 60*time.Second)

	l.Consume("fp0")

	allowed, _ := l.Check("fp0")
	require.False(t, allowed)

	allowed, _ = l.Check("fp1")
	require.True(t, allowed)
}

func TestRateLimiterEvictionForfeitsWindow(t *testing.T) {
	l := NewRateLimiter(1, 60*time.Second, 1)

	l.Consume("fp0")
	allowed, _ := l.Check("fp0")
	require.False(t, allowed)

	// a second fingerprint evicts the first one's window
	l.Consume("fp1")
	allowed, _ = l.Check("fp0")
	require.True(t, allowed)
}

func TestRateLimiterCheckDoesNotConsume(t *testing.T) {
	l, _ := newTestRateLimiter(1, 60*time.Second)

	for i := 0; i < 10; i++ {
		allowed, _ := l.Check("fp0")
		require.True(t, allowed)
	}

	l.Consume("fp0")
	allowed, _ := l.Check("fp0")
	require.False(t, allowed)
}
