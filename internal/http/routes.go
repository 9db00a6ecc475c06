package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all HTTP routes for the water quality monitor API
func SetupRoutes(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // In production, specify allowed origins
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers := NewHandlers(deps)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", handlers.GetSystemStats)

		// Current session
		r.Get("/status", handlers.GetStatus)
		r.Get("/history", handlers.GetHistory)
		r.Get("/alerts", handlers.GetAlerts)
		r.Post("/session/reset", handlers.ResetSession)

		// Readings
		r.Post("/readings", handlers.AddReading)
		r.Post("/simulate/contamination", handlers.SimulateContamination)

		// Controls
		r.Get("/demo", handlers.GetDemo)
		r.Put("/demo", handlers.SetDemo)
		r.Get("/location", handlers.GetLocation)
		r.Put("/location", handlers.SetLocation)
		r.Get("/refresh", handlers.GetRefresh)
		r.Put("/refresh", handlers.SetRefresh)

		// Alert report downloads
		r.Route("/export", func(r chi.Router) {
			r.Get("/alerts.csv", handlers.ExportAlertsCSV)
			r.Get("/alerts.xlsx", handlers.ExportAlertsExcel)
		})

		// Database archive
		r.Get("/archive/alerts", handlers.GetArchivedAlerts)
	})

	// WebSocket route for real-time updates
	if deps.Hub != nil {
		r.HandleFunc("/ws", deps.Hub.HandleWebSocket)
	}

	return r
}
