package poll

import (
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

//
// RateLimiter keeps a sliding log of accepted vote times per
// fingerprint, global across polls. A window is pruned lazily whenever
// its fingerprint is checked; nothing is swept in the background, so a
// window holds at most `limit` live entries plus whatever stale ones
// the next access removes.
//
// `Check` does not consume; the admission pipeline calls `Consume`
// after the vote is applied, under the same per-fingerprint lock, so
// the cap holds under concurrent submissions.
//
// Windows live in an LRU cache of bounded size; when a fingerprint is
// evicted its window is forfeited and the next vote starts a fresh one.
//
type RateLimiter struct {
	windows *lru.Cache
	limit   int
	window  time.Duration

	nowFunc func() time.Time
}

func NewRateLimiter(limit int, window time.Duration, cacheSize int) *RateLimiter {
	windows, err := lru.New(cacheSize)
	if err != nil {
		panic(err)
	}

	return &RateLimiter{
		windows: windows,
		limit:   limit,
		window:  window,
		nowFunc: time.Now,
	}
}

// Check prunes the fingerprint's window and reports whether another
// vote is allowed. When rejected, `resetTimeSeconds` estimates how long
// until the oldest remaining entry leaves the window.
func (l *RateLimiter) Check(fingerprint string) (allowed bool, resetTimeSeconds int) {
	now := l.nowFunc()
	recent := l.prune(fingerprint, now)

	if len(recent) < l.limit {
		return true, 0
	}

	oldest := recent[0]
	reset := l.window - now.Sub(oldest)
	resetTimeSeconds = int(math.Ceil(reset.Seconds()))
	if resetTimeSeconds < 1 {
		resetTimeSeconds = 1
	}
	return false, resetTimeSeconds
}

// Consume appends the current time to the fingerprint's window.
func (l *RateLimiter) Consume(fingerprint string) {
	now := l.nowFunc()
	recent := l.prune(fingerprint, now)
	l.windows.Add(fingerprint, append(recent, now))
}

func (l *RateLimiter) prune(fingerprint string, now time.Time) []time.Time {
	var window []time.Time
	if v, ok := l.windows.Get(fingerprint); ok {
		window = v.([]time.Time)
	}

	recent := window[:0]
	for _, ts := range window {
		if now.Sub(ts) < l.window {
			recent = append(recent, ts)
		}
	}

	if len(recent) < len(window) {
		if len(recent) == 0 {
			l.windows.Remove(fingerprint)
		} else {
			l.windows.Add(fingerprint, recent)
		}
	}

	return recent
}
