//
// Struct that bridges together components of the poll service
//
// Runner wires the poll registry, the broadcaster, the HTTP cache and
// the network server into a single serving unit. In this regard it can
// be seen as one running instance, and is used as such in unit tests.
//
package runner

import (
	"net/http/pprof"

	ghandlers "github.com/gorilla/handlers"
	logging "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/network"
	"pollpulse.io/pollpulse/lib/network/api"
	"pollpulse.io/pollpulse/lib/network/httpcache"
	"pollpulse.io/pollpulse/lib/poll"
)

// DebugPProf exposes the pprof handlers under `/debug` when true.
var DebugPProf bool

type Runner struct {
	network     *network.Server
	registry    *poll.Registry
	broadcaster *poll.Broadcaster
	cache       httpcache.Cacher

	log logging.Logger

	Conf common.Config
}

func NewRunner(n *network.Server, conf common.Config) (r *Runner, err error) {
	broadcaster := poll.NewBroadcaster(conf, nil)
	registry := poll.NewRegistry(conf, broadcaster)

	var cache httpcache.Cacher = httpcache.NewNopClient()
	if len(conf.HTTPCacheAdapter) > 0 {
		var adapter httpcache.Adapter
		if adapter, err = httpcache.NewAdapter(conf); err != nil {
			return nil, err
		}
		cache, err = httpcache.NewClient(
			httpcache.WithAdapter(adapter),
			httpcache.WithExpire(conf.HTTPCacheTTL),
			httpcache.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
	}

	r = &Runner{
		network:     n,
		registry:    registry,
		broadcaster: broadcaster,
		cache:       cache,
		log:         log.New(logging.Ctx{"endpoint": n.Endpoint()}),
		Conf:        conf,
	}

	return r, nil
}

func (r *Runner) Ready() {
	rateLimitMiddlewareAPI := network.RateLimitMiddleware(r.log, r.Conf.RateLimitRuleAPI)
	if err := r.network.AddMiddleware(network.RouterNameAPI, rateLimitMiddlewareAPI); err != nil {
		r.log.Error("`network.RateLimitMiddleware` for `RouterNameAPI` has an error", "err", err)
		return
	}
	if err := r.network.AddMiddleware(network.RouterNameMetric, rateLimitMiddlewareAPI); err != nil {
		r.log.Error("`network.RateLimitMiddleware` for `RouterNameMetric` router has an error", "err", err)
		return
	}
	if err := r.network.AddMiddleware(network.RouterNameDebug, rateLimitMiddlewareAPI); err != nil {
		r.log.Error("`network.RateLimitMiddleware` for `RouterNameDebug` router has an error", "err", err)
		return
	}

	if err := r.network.AddMiddleware(network.RouterNameAPI, network.MetricsMiddleware()); err != nil {
		r.log.Error("`network.MetricsMiddleware` has an error", "err", err)
		return
	}

	// BaseRouter's middlewares impact all sub routers.
	if err := r.network.AddMiddleware("", network.RecoverMiddleware(r.log)); err != nil {
		r.log.Error("Middleware has an error", "err", err)
		return
	}

	{ //CORS
		allowedOrigins := ghandlers.AllowedOrigins([]string{"*"})
		allowedMethods := ghandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE"})
		allowedHeaders := ghandlers.AllowedHeaders([]string{"Content-Type", "X-Requested-With", "Cache-Control", "Access-Control"})

		cors := ghandlers.CORS(allowedOrigins, allowedMethods, allowedHeaders)
		if err := r.network.AddMiddleware(network.RouterNameAPI, cors); err != nil {
			r.log.Error("Middleware has an error", "err", err)
			return
		}
	}

	apiHandler := api.NewNetworkHandlerAPI(
		r.registry,
		r.broadcaster,
		network.UrlPathPrefixAPI,
		r.log,
	)
	apiHandler.SetCache(r.cache)

	r.network.AddHandler(
		apiHandler.HandlerURLPattern(api.PostPollHandlerPattern),
		apiHandler.PostPollHandler,
	).Methods("POST", "OPTIONS")
	r.network.AddHandler(
		apiHandler.HandlerURLPattern(api.GetPollsHandlerPattern),
		r.cache.WrapHandlerFunc(apiHandler.GetPollsHandler),
	).Methods("GET")
	r.network.AddHandler(
		apiHandler.HandlerURLPattern(api.GetPollHandlerPattern),
		r.cache.WrapHandlerFunc(apiHandler.GetPollHandler),
	).Methods("GET")
	r.network.AddHandler(
		apiHandler.HandlerURLPattern(api.PostVoteHandlerPattern),
		apiHandler.PostVoteHandler,
	).Methods("POST", "OPTIONS")
	r.network.AddHandler(
		apiHandler.HandlerURLPattern(api.ClosePollHandlerPattern),
		apiHandler.ClosePollHandler,
	).Methods("PATCH", "OPTIONS")
	r.network.AddHandler(
		apiHandler.HandlerURLPattern(api.DeletePollHandlerPattern),
		apiHandler.DeletePollHandler,
	).Methods("DELETE", "OPTIONS")
	r.network.AddHandler(
		apiHandler.HandlerURLPattern(api.GetVoteStatusHandlerPattern),
		apiHandler.GetVoteStatusHandler,
	).Methods("GET")

	r.network.AddHandler("/healthz", api.HealthHandler).Methods("GET")

	// prometheus
	r.network.AddHandler(network.UrlPathPrefixMetric, promhttp.Handler().ServeHTTP)

	// pprof
	if DebugPProf == true {
		r.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/cmdline", pprof.Cmdline)
		r.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/profile", pprof.Profile)
		r.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/symbol", pprof.Symbol)
		r.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/trace", pprof.Trace)
		r.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/*", pprof.Index)
	}

	r.network.Ready()
}

func (r *Runner) Start() (err error) {
	r.log.Debug("Runner started")
	r.Ready()

	if err = r.network.Start(); err != nil {
		return
	}

	return
}

func (r *Runner) Stop() {
	r.network.Stop()
}

func (r *Runner) Network() *network.Server {
	return r.network
}

func (r *Runner) Registry() *poll.Registry {
	return r.registry
}

func (r *Runner) Broadcaster() *poll.Broadcaster {
	return r.broadcaster
}

func (r *Runner) Log() logging.Logger {
	return r.log
}
