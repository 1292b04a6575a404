package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tryinterview/checkout-verifier/backend/internal/billing"
	"github.com/tryinterview/checkout-verifier/backend/internal/config"
	"github.com/tryinterview/checkout-verifier/backend/internal/handlers"
	"github.com/tryinterview/checkout-verifier/backend/internal/httpserver"
	"github.com/tryinterview/checkout-verifier/backend/internal/models"
	"github.com/tryinterview/checkout-verifier/backend/internal/store"
	stripeClient "github.com/tryinterview/checkout-verifier/backend/internal/stripe"
)

func main() {
	// Best-effort: load environment variables from .env-style files in local
	// development. These calls are safe to ignore in production environments.
	_ = godotenv.Load(
		"../.env",
		".env",
	)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	backend, err := store.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer backend.Close()

	catalog := cfg.PlanCatalog()
	if catalog.Len() == 0 {
		log.Printf("[server] no STRIPE_PRICE_* configured; every subscription will map to %q", models.UnknownPlan)
	}

	stripe := stripeClient.NewClientWithURL(cfg.StripeSecretKey, cfg.StripeAPIURL)
	service := billing.NewService(stripe, catalog, backend)
	metrics := handlers.NewMetrics()

	srv := httpserver.New(cfg, service, backend, metrics)

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("backend starting on %s (store=%s, plans=%d)", cfg.ServerAddress, cfg.StoreDriver, catalog.Len())
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server exited with error: %v", err)
		backend.Close()
		os.Exit(1)
	}
}
