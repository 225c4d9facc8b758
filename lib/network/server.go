package network

import (
	"fmt"
	goLog "log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"golang.org/x/net/http2"

	"pollpulse.io/pollpulse/lib/errors"
)

const (
	RouterNameAPI    = "api"
	RouterNameMetric = "metric"
	RouterNameDebug  = "debug"
)

var (
	UrlPathPrefixAPI    = fmt.Sprintf("/%s/v1", RouterNameAPI)
	UrlPathPrefixMetric = fmt.Sprintf("/%s", RouterNameMetric)
	UrlPathPrefixDebug  = fmt.Sprintf("/%s", RouterNameDebug)
)

//
// Server wraps `*http.Server` with the base mux router and the named
// subrouters; handlers and middlewares are attached per router. Until
// `Ready` is called, every request gets 503.
//
type Server struct {
	tlsCertFile string
	tlsKeyFile  string

	server  *http.Server
	router  *mux.Router
	routers map[string]*mux.Router
	ready   bool

	config *ServerConfig
	log    logging.Logger
}

func NewServer(config *ServerConfig) *Server {
	httpLog := log.New(logging.Ctx{"module": "http", "server": config.ServerName})
	errorLog := goLog.New(ErrorLog15Writer{httpLog}, "", 0)

	server := &http.Server{
		Addr:              config.Addr,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		ErrorLog:          errorLog,
	}
	server.SetKeepAlivesEnabled(true)

	http2.ConfigureServer(
		server,
		&http2.Server{
			IdleTimeout: config.IdleTimeout,
		},
	)

	baseRouter := mux.NewRouter()

	s := &Server{
		server:      server,
		router:      baseRouter,
		tlsCertFile: config.TLSCertFile,
		tlsKeyFile:  config.TLSKeyFile,
		config:      config,
		log:         httpLog,
	}
	s.routers = map[string]*mux.Router{
		RouterNameAPI:    baseRouter.PathPrefix(UrlPathPrefixAPI).Subrouter(),
		RouterNameMetric: baseRouter.PathPrefix(UrlPathPrefixMetric).Subrouter(),
		RouterNameDebug:  baseRouter.PathPrefix(UrlPathPrefixDebug).Subrouter(),
	}

	s.setNotReadyHandler()

	return s
}

func (s *Server) Endpoint() string {
	return s.config.Endpoint.String()
}

func (s *Server) setNotReadyHandler() {
	notReady := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	})
	s.server.Handler = Log15Handler{log: s.log, handler: notReady}
}

func (s *Server) AddMiddleware(routerName string, mws ...mux.MiddlewareFunc) error {
	var r *mux.Router
	if len(routerName) < 1 {
		r = s.router
	} else {
		var ok bool
		if r, ok = s.routers[routerName]; !ok {
			return errors.ErrorNotMatchHTTPRouter
		}
	}
	for _, mw := range mws {
		r.Use(mw)
	}
	return nil
}

func (s *Server) AddHandler(pattern string, handler http.HandlerFunc) (route *mux.Route) {
	var routerName string
	var prefix string
	switch {
	case strings.HasPrefix(pattern, UrlPathPrefixAPI):
		routerName = RouterNameAPI
		prefix = pattern[len(UrlPathPrefixAPI):]
	case strings.HasPrefix(pattern, UrlPathPrefixMetric):
		routerName = RouterNameMetric
		prefix = pattern[len(UrlPathPrefixMetric):]
	case strings.HasPrefix(pattern, UrlPathPrefixDebug):
		routerName = RouterNameDebug
		prefix = pattern[len(UrlPathPrefixDebug):]
	default:
		return s.router.HandleFunc(pattern, handler)
	}

	r := s.routers[routerName]

	// if a pattern has a suffix *, the router sets path prefix and handler
	if strings.HasSuffix(prefix, "*") {
		pathPrefix := strings.TrimSuffix(prefix, "*")
		return r.PathPrefix(pathPrefix).Handler(handler)
	}
	return r.HandleFunc(prefix, handler)
}

// Router exposes the base router; tests mount it on `httptest.Server`.
func (s *Server) Router() http.Handler {
	return Log15Handler{log: s.log, handler: s.router}
}

func (s *Server) Ready() {
	s.server.Handler = Log15Handler{log: s.log, handler: s.router}
	s.ready = true
}

// Start will start `Server`; it blocks until `Stop` or failure.
func (s *Server) Start() (err error) {
	if strings.ToLower(s.config.Endpoint.Scheme) == "http" {
		err = s.server.ListenAndServe()
	} else {
		err = s.server.ListenAndServeTLS(s.tlsCertFile, s.tlsKeyFile)
	}

	if err == http.ErrServerClosed {
		err = nil
	}
	return
}

func (s *Server) Stop() {
	s.server.Close()
}
