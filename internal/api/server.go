package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/gowatchlist/internal/api/handlers"
	"github.com/amaumene/gowatchlist/internal/api/middleware"
	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	coordinator *controllers.Coordinator
	gatherer    prometheus.Gatherer
	metrics     *metrics.Metrics
	logger      *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, coordinator *controllers.Coordinator, gatherer prometheus.Gatherer, m *metrics.Metrics, logger *logrus.Logger) *Server {
	s := &Server{
		coordinator: coordinator,
		gatherer:    gatherer,
		metrics:     m,
		logger:      logger,
	}

	s.server = &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: websocket streams are long-lived
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Handler returns the routed handler wrapped in the logging middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.setupRoutes(mux)
	return middleware.Logging(mux, s.logger)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	c := s.coordinator

	// Health check
	mux.Handle("GET /health", handlers.NewHealthHandler(s.logger))

	// Status endpoint
	mux.Handle("GET /status", handlers.NewStatusHandler(c.Tracking(), c.Searches(), s.logger))

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Search
	mux.Handle("GET /api/search", handlers.NewSearchHandler(c.Searches(), s.logger))

	// Popular lists
	popular := handlers.NewPopularHandler(c.Popular(), s.logger)
	mux.HandleFunc("GET /api/popular/movies", popular.Movies)
	mux.HandleFunc("GET /api/popular/tv", popular.Series)

	// Push streams
	mux.Handle("GET /api/stream/{topic}", handlers.NewStreamHandler(c.Tracking(), c.Searches(), s.metrics, s.logger))

	// Tracking lists
	trackingHandler := handlers.NewTrackingHandler(c.Tracking(), s.logger)
	mux.HandleFunc("GET /api/{list}", trackingHandler.List)
	mux.HandleFunc("POST /api/{list}/toggle", trackingHandler.Toggle)
	mux.HandleFunc("GET /api/{list}/{kind}/{id}", trackingHandler.Membership)
	mux.HandleFunc("DELETE /api/{list}/{kind}/{id}", trackingHandler.Delete)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
