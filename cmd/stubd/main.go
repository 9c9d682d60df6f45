package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mindmesh/console/internal/infra"
	"github.com/mindmesh/console/internal/stub"
)

func main() {
	// 1. Configuration and logging
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// 2. In-memory store with a demo account
	store := stub.NewStore(cfg.Stub.BcryptCost)
	if email := os.Getenv("MINDMESH_STUB_SEED_EMAIL"); email != "" {
		password := os.Getenv("MINDMESH_STUB_SEED_PASSWORD")
		if _, err := store.Seed(email, password); err != nil {
			logger.Fatal("seed account", zap.Error(err))
		}
		logger.Info("seeded demo account", zap.String("email", email))
	}

	// 3. Token issuer. Without configured keys an ephemeral pair is
	// generated, which is fine for a local stub.
	issuer, err := stub.NewIssuer(cfg.Stub.PrivateKey, cfg.Stub.PublicKey, cfg.Stub.TokenTTL)
	if err != nil {
		logger.Fatal("token issuer", zap.Error(err))
	}

	// 4. Metrics on a side listener
	reg := prometheus.NewRegistry()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		logger.Info("metrics listening", zap.String("addr", cfg.Stub.MetricsAddr))
		if err := http.ListenAndServe(cfg.Stub.MetricsAddr, mux); err != nil {
			logger.Error("metrics server", zap.Error(err))
		}
	}()

	// 5. API server
	api := stub.NewServer(store, issuer, reg, stub.Options{
		RateLimit: cfg.Stub.RateLimit,
		RateBurst: cfg.Stub.RateBurst,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Stub.Addr,
		Handler:      api,
		ReadTimeout:  cfg.Stub.ReadTimeout,
		WriteTimeout: cfg.Stub.WriteTimeout,
	}

	// 6. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("stub API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("stub API stopping")

	// Give in-flight requests 5 seconds to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown", zap.Error(err))
	}
	logger.Info("stub API exited")
}
