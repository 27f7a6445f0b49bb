package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/app"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/infra/adapters/notify"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/infra/adapters/store/sqlite"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/infra/httpx"
	"github.com/jcmexdev/ecommerce-checkout/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-checkout/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "checkout-service"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	repo, err := sqlite.Open(getEnv("CHECKOUT_DB_PATH", "./data/checkout.db"))
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Caching is optional: no Redis address, no cache.
	var orderCache cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		orderCache = cache.NewRedisCache(addr, "checkout")
	}

	placement := app.NewPlacementService(repo, repo, notify.NewLogNotifier())
	query := app.NewQueryService(repo, orderCache)
	status := app.NewStatusService(repo, orderCache)

	handler := httpx.NewHandler(placement, query, status, repo)
	router := httpx.NewRouter(handler)

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("checkout service running", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
