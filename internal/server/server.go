// Package server is the HTTP bootstrap shell: it wires configuration,
// middleware and the mounted route groups, and owns the listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leslieo2/hotel-booking-mock/internal/apidoc"
	"github.com/leslieo2/hotel-booking-mock/internal/auth"
	"github.com/leslieo2/hotel-booking-mock/internal/config"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
	"github.com/leslieo2/hotel-booking-mock/internal/hotel"
	"github.com/leslieo2/hotel-booking-mock/internal/hotreload"
	"github.com/leslieo2/hotel-booking-mock/internal/observability"
	"github.com/leslieo2/hotel-booking-mock/internal/router"
	"github.com/leslieo2/hotel-booking-mock/internal/security"
)

// StartupError is a failure to bring the server up. It is fatal: the caller
// logs it and exits without retrying.
type StartupError struct {
	Op  string
	Err error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed: %s: %v", e.Op, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// Option customizes a Server
type Option func(*Server)

// WithClock replaces the clock used for response timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithGroup mounts an extra route group next to the built-in ones
func WithGroup(prefix string, g router.Group) Option {
	return func(s *Server) { s.extraGroups = append(s.extraGroups, mount{prefix: prefix, group: g}) }
}

type mount struct {
	prefix string
	group  router.Group
}

type Server struct {
	config *config.Config
	server *http.Server

	router  *router.Router
	handler http.Handler
	docs    *apidoc.Document

	// Collaborators
	catalog *hotel.CatalogStore
	hotels  *hotel.Service
	auth    *auth.Handler

	// Security
	rateLimiter *security.RateLimiter

	// Observability
	logger    *zap.Logger
	metrics   *observability.Metrics
	tracer    *observability.Tracer
	startTime time.Time
	now       func() time.Time

	extraGroups []mount
	closeOnce   sync.Once
}

// New builds the server: collaborators, route table and middleware chain.
// Nothing is bound until Run or Serve.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		config:    cfg,
		logger:    logger,
		metrics:   observability.NewMetrics(),
		startTime: time.Now(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	tracer, err := observability.NewTracer(cfg.Observability.Tracing)
	if err != nil {
		return nil, &StartupError{Op: "tracer", Err: err}
	}
	s.tracer = tracer

	docs, err := apidoc.Load(context.Background())
	if err != nil {
		return nil, &StartupError{Op: "api document", Err: err}
	}
	s.docs = docs

	catalog, err := hotel.NewCatalogStore(cfg.Hotel.CatalogFile, logger, s.metrics)
	if err != nil {
		return nil, &StartupError{Op: "hotel catalog", Err: err}
	}
	s.catalog = catalog
	s.hotels = hotel.NewService(catalog, cfg.Hotel, s.metrics)
	s.auth = auth.NewHandler(cfg.Auth, logger)
	s.rateLimiter = security.NewRateLimiter(cfg.Security.RateLimit, s.handleError)

	s.router = router.New(s.handleError)
	s.registerRoutes()
	s.handler = s.applyMiddleware(s.router)

	return s, nil
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Get(constants.PathHealth, s.healthHandler)
	r.Get(constants.PathReady, s.readinessHandler)
	r.Get(constants.PathOpenAPI, s.openAPIHandler)
	r.Get("/{$}", s.indexHandler)
	if s.serveMetricsInline() {
		r.Get(s.config.Observability.Metrics.Path, s.metricsHandler)
	}

	r.Mount(constants.PrefixHotel, hotel.NewHandler(s.hotels, s.logger))
	r.Mount(constants.PrefixAuth, s.auth)
	for _, m := range s.extraGroups {
		r.Mount(m.prefix, m.group)
	}
}

// serveMetricsInline reports whether /metrics is served on the main
// listener rather than a dedicated one
func (s *Server) serveMetricsInline() bool {
	return s.config.Observability.Metrics.Enabled && s.config.Server.MetricsPort == ""
}

// Handler returns the full middleware chain in front of the router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Routes returns the registered route table
func (s *Server) Routes() []router.Route {
	return s.router.Routes()
}

// Run binds the configured address and serves until ctx is cancelled.
// A bind failure is returned as a *StartupError.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.GetServerAddress())
	if err != nil {
		s.Close()
		return &StartupError{Op: "listen", Err: err}
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
// within the configured timeout. Serve takes ownership of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	s.server = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.config.Server.ReadTimeout,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		WriteTimeout:      s.config.Server.WriteTimeout,
		IdleTimeout:       s.config.Server.IdleTimeout,
		MaxHeaderBytes:    constants.ServerMaxHeaderBytes,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	metricsServer, err := s.startMetricsServer()
	if err != nil {
		_ = ln.Close()
		return err
	}

	reloader, err := s.startHotReload()
	if err != nil {
		_ = ln.Close()
		if metricsServer != nil {
			_ = metricsServer.Close()
		}
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if s.config.TLS.Enabled {
			errCh <- s.server.ServeTLS(ln, s.config.TLS.CertFile, s.config.TLS.KeyFile)
		} else {
			errCh <- s.server.Serve(ln)
		}
	}()

	s.metrics.SetHealthStatus(true)
	s.logStartup(ln.Addr())

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = &StartupError{Op: "serve", Err: err}
		}
	}

	s.logger.Info("Shutting down server...")
	s.metrics.SetHealthStatus(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if reloader != nil {
		if err := reloader.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("Hot reload did not stop in time", zap.Error(err))
		}
	}

	if err := s.shutdownServers(shutdownCtx, metricsServer); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

// startMetricsServer binds the dedicated metrics listener when one is
// configured
func (s *Server) startMetricsServer() (*http.Server, error) {
	addr := s.config.GetMetricsAddress()
	if addr == "" || !s.config.Observability.Metrics.Enabled {
		return nil, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &StartupError{Op: "metrics listen", Err: err}
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle(s.config.Observability.Metrics.Path, s.metrics.Handler())
	metricsServer := &http.Server{
		Handler:           metricsMux,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
	}
	s.logger.Info("Starting metrics server", zap.String("address", ln.Addr().String()))

	go func() {
		if err := metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return metricsServer, nil
}

// startHotReload watches an external catalog file. The embedded catalog
// never changes, so nothing is watched without one.
func (s *Server) startHotReload() (*hotreload.Manager, error) {
	if !s.config.HotReload.Enabled || s.catalog.Path() == "" {
		return nil, nil
	}

	manager, err := hotreload.NewManager(s.logger)
	if err != nil {
		return nil, &StartupError{Op: "hot reload", Err: err}
	}
	manager.SetDebounceTime(s.config.HotReload.Debounce)

	if err := manager.AddWatch(s.catalog.Path()); err != nil {
		manager.Stop()
		return nil, &StartupError{Op: "hot reload", Err: err}
	}
	if err := manager.RegisterReloadable(s.catalog); err != nil {
		manager.Stop()
		return nil, &StartupError{Op: "hot reload", Err: err}
	}
	if err := manager.AddListener("readiness", s.onCatalogReload); err != nil {
		manager.Stop()
		return nil, &StartupError{Op: "hot reload", Err: err}
	}
	if err := manager.Start(); err != nil {
		manager.Stop()
		return nil, &StartupError{Op: "hot reload", Err: err}
	}

	s.logger.Info("Hot reload enabled", zap.String("catalog_file", s.catalog.Path()))
	return manager, nil
}

// onCatalogReload keeps the health gauge in line with readiness after
// every reload round
func (s *Server) onCatalogReload(ctx context.Context, result hotreload.Result) error {
	ready, hotels := s.hotels.Ready()
	s.metrics.SetHealthStatus(ready)
	s.logger.Info("Catalog reload round finished",
		zap.Strings("reloaded", result.Reloaded),
		zap.Int("failed", len(result.Errors)),
		zap.Int("hotels", hotels),
	)
	return nil
}

func (s *Server) logStartup(addr net.Addr) {
	scheme := "http"
	if s.config.TLS.Enabled {
		scheme = "https"
	}
	routes := s.router.Routes()

	s.logger.Info("Server listening",
		zap.String("service", constants.ServiceName),
		zap.String("version", constants.ServiceVersion),
		zap.String("environment", s.config.Environment),
		zap.String("address", fmt.Sprintf("%s://%s", scheme, addr)),
		zap.Int("routes", len(routes)),
		zap.Int("hotels", s.catalog.Current().Len()),
		zap.Bool("rate_limit", s.config.Security.RateLimit.Enabled),
		zap.Bool("tracing", s.tracer.Enabled()),
	)
	for _, route := range routes {
		s.logger.Info("Registered route",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
			zap.String("summary", s.docs.Summary(route.Method, route.Path)),
		)
	}
}

// shutdownServers drains the main and metrics servers in parallel
func (s *Server) shutdownServers(ctx context.Context, metricsServer *http.Server) error {
	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	if metricsServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.logger.Info("Shutting down metrics server...")
			if err := metricsServer.Shutdown(ctx); err != nil {
				s.logger.Error("Failed to shutdown metrics server", zap.Error(err))
				errChan <- fmt.Errorf("metrics server shutdown: %w", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.logger.Info("Shutting down main server...")
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shutdown main server", zap.Error(err))
			errChan <- fmt.Errorf("main server shutdown: %w", err)
		}
	}()

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Close releases background resources held by the collaborators. It is
// called by Serve and is safe to call more than once.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.rateLimiter.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.tracer.Shutdown(ctx); err != nil {
			s.logger.Warn("Failed to flush traces", zap.Error(err))
		}
	})
}
