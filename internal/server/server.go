package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	gqlgen "github.com/99designs/gqlgen/graphql"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/shiprate/internal/graphql"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Server is the HTTP server for the shipping rate service.
type Server struct {
	port     int
	executor *graphql.Executor
	logger   *otelzap.Logger
	gatherer prometheus.Gatherer
	limiter  *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Port int

	// RateLimitRPS is the sustained requests per second allowed per client.
	// Zero disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new server instance. Metrics are served from gatherer.
func New(cfg Config, executor *graphql.Executor, logger *otelzap.Logger, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		port:     cfg.Port,
		executor: executor,
		logger:   logger,
		gatherer: gatherer,
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, time.Minute, 3*time.Minute)
	}
	return s
}

// Handler returns the routed handler with its middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// GraphQL endpoint
	mux.HandleFunc("/graphql", s.handleGraphQL)

	var handler http.Handler = mux
	handler = requestLogger(s.logger)(handler)
	if s.limiter != nil {
		handler = s.limiter.Middleware()(handler)
	}
	return gziphandler.GzipHandler(handler)
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if s.limiter != nil {
		go s.limiter.CleanupLoop(ctx)
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeResponse(w, r, http.StatusMethodNotAllowed, errorResponse("method not allowed, use POST"))
		return
	}

	var params gqlgen.RawParams
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&params); err != nil {
		s.writeResponse(w, r, http.StatusBadRequest, errorResponse("invalid JSON body: "+err.Error()))
		return
	}

	resp, status := s.executor.Execute(r.Context(), &params)
	s.writeResponse(w, r, status, resp)
}

func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, status int, resp *gqlgen.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Ctx(r.Context()).Warn("Failed to write response", zap.Error(err))
	}
}

func errorResponse(msg string) *gqlgen.Response {
	return &gqlgen.Response{Errors: gqlerror.List{gqlerror.Errorf("%s", msg)}}
}
