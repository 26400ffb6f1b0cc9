package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/server/endpoint"
	"github.com/kbukum/voicescribe/server/middleware"
)

// Server exposes the probe endpoints of a running bot over HTTP.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	config Config
	log    *logger.Logger

	mu sync.Mutex
	ln net.Listener
}

// New builds the server with its middleware chain. Nothing listens until
// Start, and no routes exist until Probes is called.
func New(cfg Config, log *logger.Logger) *Server {
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	log = log.WithComponent("server")
	engine := gin.New()
	engine.Use(middleware.Recovery(log), middleware.RequestID(), middleware.RequestLogger(log))

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		config: cfg,
		log:    log,
	}
}

// Probes mounts /health, /ready and /version for service.
func (s *Server) Probes(service string, checker endpoint.HealthChecker) {
	probes := s.engine.Group("/")
	probes.GET("/health", endpoint.Health(service, checker))
	probes.GET("/ready", endpoint.Readiness(service, checker))
	probes.GET("/version", endpoint.Version(service))
}

// Handler is the engine with middleware, for in-process tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start returns once the port is bound. Requests are served in the background.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	s.setListener(ln)

	go s.serve(ln)
	s.log.Info("probe server listening", map[string]interface{}{"addr": ln.Addr().String()})
	return nil
}

func (s *Server) serve(ln net.Listener) {
	err := s.http.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("probe server stopped", logger.MergeWithError(nil, err))
		s.setListener(nil)
	}
}

// Stop drains in-flight probes for at most ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	defer s.setListener(nil)
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown probe server: %w", err)
	}
	s.log.Info("probe server stopped")
	return nil
}

// Addr is the bound address while serving and the configured one otherwise.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return s.http.Addr
	}
	return s.ln.Addr().String()
}

func (s *Server) setListener(ln net.Listener) {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
}

func (s *Server) serving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ln != nil
}
