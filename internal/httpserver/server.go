package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tryinterview/checkout-verifier/backend/internal/config"
	"github.com/tryinterview/checkout-verifier/backend/internal/handlers"
	edge "github.com/tryinterview/checkout-verifier/backend/internal/middleware"
)

// Server wraps an http.Server with convenience helpers for startup/shutdown.
type Server struct {
	httpServer *http.Server
}

// New constructs an HTTP server using the provided configuration, verification
// service and record store. metrics may be nil.
func New(cfg config.Config, verifier handlers.VerificationService, records handlers.RecordStore, metrics *handlers.Metrics) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if metrics != nil {
		router.Use(edge.NewRequestTracker(metrics).Middleware())
		router.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	router.Get("/healthz", handlers.Health)

	router.Route("/api", func(r chi.Router) {
		r.Use(edge.CORS(cfg.AllowedOrigins))

		// Method filtering for verify-payment happens in the handler so that
		// unsupported methods get the JSON error body.
		r.HandleFunc("/verify-payment", handlers.VerifyPayment(verifier, metrics))

		if records != nil {
			r.Get("/subscriptions/{id}", handlers.GetSubscription(records))
			r.Get("/customers/{id}", handlers.GetCustomer(records))
		}
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: srv}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
