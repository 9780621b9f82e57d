package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templates embed.FS

// Renderer performs one render pass per call.
type Renderer interface {
	Render(ctx context.Context) (*models.Dashboard, error)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server exposes the dashboard over HTTP. Every data request runs its own render pass.
type Server struct {
	log      *slog.Logger
	renderer Renderer
	health   HealthChecker // nil when the source has nothing to ping
	gatherer prometheus.Gatherer
	index    *template.Template
}

// New creates a dashboard server. health may be nil.
func New(log *slog.Logger, renderer Renderer, health HealthChecker, gatherer prometheus.Gatherer) *Server {
	index := template.Must(template.New("index.html").Funcs(template.FuncMap{
		"brl":  formatBRL,
		"days": formatDays,
	}).ParseFS(templates, "templates/index.html"))

	return &Server{
		log:      log,
		renderer: renderer,
		health:   health,
		gatherer: gatherer,
		index:    index,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/markers.geojson", s.handleMarkers)
		r.Get("/heatmap.geojson", s.handleHeatmap)
	})
	r.Get("/charts/revenue/{view}.png", s.handleRevenueChart)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

// Run serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	const (
		readTimeout     = 5 * time.Second
		writeTimeout    = 60 * time.Second
		shutdownTimeout = 10 * time.Second
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting dashboard server", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dashboard server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.log.InfoContext(ctx, "Shutting down dashboard server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down dashboard server: %w", err)
	}

	return nil
}
