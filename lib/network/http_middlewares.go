package network

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/errors"
	"pollpulse.io/pollpulse/lib/metrics"
	"pollpulse.io/pollpulse/lib/network/httputils"
)

func RecoverMiddleware(logger logging.Logger) mux.MiddlewareFunc {
	if logger == nil {
		logger = log
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", rec)
					}
					httputils.WriteJSONError(w, err)
					logger.Error("recover a panic", "err", err, "stack", string(debug.Stack()))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware throttles requests per client ip. This is the
// transport-level guard; the per-fingerprint vote limit lives in the
// vote admission pipeline.
func RateLimitMiddleware(logger logging.Logger, rule common.RateLimitRule) mux.MiddlewareFunc {
	if logger == nil {
		logger = log
	}

	defaultLimiter := limiter.New(memory.NewStore(), rule.Default)
	byIPAddress := map[string]*limiter.Limiter{}
	for ip, rate := range rule.ByIPAddress {
		byIPAddress[ip] = limiter.New(memory.NewStore(), rate)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			instance := defaultLimiter
			ip := defaultLimiter.GetIP(r)
			if l, ok := byIPAddress[ip.String()]; ok {
				instance = l
			}

			context, err := instance.Get(r.Context(), instance.GetIPKey(r))
			if err != nil {
				logger.Error("failed to check rate limit", "err", err, "remote", r.RemoteAddr)
				httputils.WriteJSONError(w, err)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(context.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(context.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(context.Reset, 10))

			if context.Reached {
				logger.Debug("request rate limited", "remote", r.RemoteAddr, "uri", r.RequestURI)
				httputils.WriteJSONError(w, errors.ErrorRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware measures request count and duration per endpoint.
func MetricsMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()

			writer, ok := w.(*ResponseLog15Writer)
			if !ok {
				writer = &ResponseLog15Writer{w: w}
			}
			next.ServeHTTP(writer, r)

			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					endpoint = tpl
				}
			}

			status := strconv.Itoa(writer.Status())
			labels := []string{"endpoint", endpoint, "method", r.Method, "status", status}

			metrics.API.RequestsTotal.With(labels...).Add(1)
			if writer.Status() >= http.StatusBadRequest {
				metrics.API.RequestErrorsTotal.With(labels...).Add(1)
			}
			metrics.API.RequestDurationSeconds.With(labels...).Observe(time.Since(begin).Seconds())
		})
	}
}
