// internal/server/server.go

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tripdash/internal/config"
	"tripdash/internal/domain/chart"
	"tripdash/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	wsConfig handlers.WebSocketConfig,
	charts chart.Service,
	renderer handlers.Renderer,
	exporter handlers.Exporter,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CorsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Export-Truncated"},
		MaxAge:         300,
	}))

	// Create handler dependencies
	pageHandler := handlers.NewPageHandler()
	figureHandler := handlers.NewFigureHandler(charts, renderer)
	exportHandler := handlers.NewExportHandler(exporter)

	// Dashboard page
	router.With(middleware.Timeout(60*time.Second)).Get("/", pageHandler.GetIndex)

	// Routes
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(middleware.Compress(5, "application/json", "text/plain"))

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Get("/options", pageHandler.GetOptions)

			// Figures API
			r.Route("/figures", func(r chi.Router) {
				r.Get("/", figureHandler.GetFigures)
				r.Get("/{id}", figureHandler.GetFigure)
			})

			// Server-side chart images
			r.Get("/charts/{id}.png", figureHandler.GetChartPNG)

			// Downloads
			r.Get("/export/trips.xlsx", exportHandler.ExportTrips)
		})
	})

	// WebSocket endpoint for dashboard callbacks
	router.Get("/ws", handlers.FiguresWebSocketHandler(charts, wsConfig))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the routed handler, for use with httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
