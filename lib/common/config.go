package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
)

//
// Config collects the policy knobs of the poll service: vote rate
// limiting, broadcaster buffering and the HTTP cache. It is built once
// at startup and handed to the registry, the broadcaster and the
// network runner; there is no process-wide configuration state.
//
type Config struct {
	VoteRateLimit  int
	VoteRateWindow time.Duration

	RateLimitWindowCacheSize int
	SubscriberBufferSize     int

	// Those fields are not vote-admission related
	RateLimitRuleAPI RateLimitRule

	HTTPCacheAdapter  string
	HTTPCachePoolSize int
	HTTPCacheTTL      time.Duration
}

func NewConfig() Config {
	p := Config{}

	p.VoteRateLimit = VoteRateLimit
	p.VoteRateWindow = VoteRateWindow
	p.RateLimitWindowCacheSize = RateLimitWindowCacheSize
	p.SubscriberBufferSize = SubscriberBufferSize

	p.RateLimitRuleAPI = NewRateLimitRule(RateLimitAPI)

	p.HTTPCachePoolSize = HTTPCachePoolSize
	p.HTTPCacheTTL = HTTPCacheAdapterTTL

	return p
}

// RateLimitRule is the transport-level rate limit of one router; the
// default rate applies to every client, `ByIPAddress` can override it
// for specific addresses.
type RateLimitRule struct {
	Default     limiter.Rate
	ByIPAddress map[string]limiter.Rate
}

func NewRateLimitRule(rate limiter.Rate) RateLimitRule {
	return RateLimitRule{
		Default:     rate,
		ByIPAddress: map[string]limiter.Rate{},
	}
}

// ParseRateLimitRate parses "<limit>-<period>" of ulule/limiter's
// formatted style, e.g. "300-M", "10-S".
func ParseRateLimitRate(s string) (rate limiter.Rate, err error) {
	return limiter.NewRateFromFormatted(strings.ToUpper(s))
}

func FormatRateLimitRate(rate limiter.Rate) string {
	var period string
	switch rate.Period {
	case time.Second:
		period = "S"
	case time.Minute:
		period = "M"
	case time.Hour:
		period = "H"
	default:
		period = rate.Period.String()
	}
	return strconv.FormatInt(rate.Limit, 10) + "-" + period
}
