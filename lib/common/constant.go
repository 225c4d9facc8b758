package common

import (
	"time"

	"github.com/ulule/limiter/v3"
)

const (
	// MinPollOptions and MaxPollOptions bound the number of options of a
	// single poll at creation time.
	MinPollOptions int = 2
	MaxPollOptions int = 10

	// VoteRateLimit is the maximum number of accepted votes per
	// fingerprint inside VoteRateWindow, across all polls.
	VoteRateLimit  int           = 5
	VoteRateWindow time.Duration = 60 * time.Second

	// RateLimitWindowCacheSize bounds how many fingerprint windows the
	// vote rate limiter keeps in memory at once.
	RateLimitWindowCacheSize int = 65536

	// SubscriberBufferSize is the per-subscriber event buffer of the
	// broadcaster; when full, the oldest pending event is dropped.
	SubscriberBufferSize int = 16

	PollIDLength   int = 10
	OptionIDLength int = 9

	HTTPCachePoolSize          = 1024
	HTTPCacheMemoryAdapterName = "mem"
	HTTPCacheAdapterTTL        = 1 * time.Second
)

var (
	// RateLimitAPI is the transport-level limit per client ip; the
	// per-fingerprint vote limit is enforced separately by the vote
	// admission pipeline.
	RateLimitAPI = limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  300,
	}
)
