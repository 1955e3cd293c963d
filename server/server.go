package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/drivegate/component"
	"github.com/kbukum/drivegate/logger"
	"github.com/kbukum/drivegate/observability"
	"github.com/kbukum/drivegate/server/endpoint"
	"github.com/kbukum/drivegate/server/middleware"
)

// Server serves a gin engine, wrapped in the net/http middleware chain,
// over HTTP/1.1 and cleartext HTTP/2.
type Server struct {
	cfg    Config
	engine *gin.Engine
	srv    *http.Server
	log    *logger.Logger

	mu      sync.RWMutex
	handler http.Handler // engine until ApplyMiddleware
	ln      net.Listener
}

// New builds a Server for cfg. Routes are added on GinEngine; the middleware
// chain and default endpoints come from ApplyDefaults.
func New(cfg Config, log *logger.Logger) *Server {
	if gin.Mode() != gin.TestMode {
		mode := gin.ReleaseMode
		if zerolog.GlobalLevel() <= zerolog.DebugLevel {
			mode = gin.DebugMode
		}
		gin.SetMode(mode)
	}
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	s := &Server{cfg: cfg, engine: engine, handler: engine, log: log.WithComponent("server")}
	// A nil list makes ClientIP the peer address.
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		s.log.Error("Invalid trusted proxies, forwarding headers ignored", logger.ErrorFields("trusted_proxies", err))
		_ = engine.SetTrustedProxies(nil)
	}
	s.srv = &http.Server{
		Addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler: h2c.NewHandler(http.HandlerFunc(s.dispatch), &http2.Server{
			MaxConcurrentStreams: 250,
			IdleTimeout:          cfg.IdleTimeout,
		}),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return s
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()
	h.ServeHTTP(w, r)
}

// GinEngine is where routes are registered.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Handler is the full chain, for driving the server through httptest.
func (s *Server) Handler() http.Handler { return http.HandlerFunc(s.dispatch) }

// Start binds the listener and serves in the background.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server stopped", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	s.log.Info("HTTP server listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop stops accepting connections and waits up to ShutdownTimeout for
// in-flight responses, downloads included.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	s.mu.Lock()
	s.ln = nil
	s.mu.Unlock()
	if err != nil {
		s.log.Error("HTTP server shutdown incomplete", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// Addr is the bound address while running, the configured one otherwise.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

func (s *Server) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ln != nil
}

// ApplyMiddleware installs recovery, request id, access log and metrics,
// CORS and the body-size limit, outermost first.
func (s *Server) ApplyMiddleware(metrics *observability.Metrics) {
	chain := middleware.Chain(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.RequestLogger(s.log, metrics),
		middleware.CORS(&s.cfg.CORS),
		middleware.BodySizeLimit(s.cfg.MaxBodySize),
	)
	s.mu.Lock()
	s.handler = chain(s.engine)
	s.mu.Unlock()
}

// ApplyDefaults installs the middleware chain and registers /health and
// /info.
func (s *Server) ApplyDefaults(serviceName string, checker component.HealthChecker, metrics *observability.Metrics) {
	s.ApplyMiddleware(metrics)
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName))
}
