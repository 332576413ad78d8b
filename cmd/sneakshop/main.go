package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sneakshop-lab/sneakshop/internal/analytics"
	"github.com/sneakshop-lab/sneakshop/internal/cart"
	corecfg "github.com/sneakshop-lab/sneakshop/internal/core/config"
	"github.com/sneakshop-lab/sneakshop/internal/experiment"
	"github.com/sneakshop-lab/sneakshop/internal/identity"
	"github.com/sneakshop-lab/sneakshop/internal/server"
	"github.com/sneakshop-lab/sneakshop/internal/storefront"
	"github.com/sneakshop-lab/sneakshop/internal/track"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	pricing, err := cfg.Store.Pricing()
	if err != nil {
		slog.Error("Invalid pricing config", "error", err)
		os.Exit(1)
	}

	// 2. Initialize the assignment gate
	gate := experiment.NewGate()
	if v, ok := experiment.ParseVariant(cfg.Experiment.DefaultArm); ok {
		gate.Default = v
	}

	// 3. Initialize the relay ingestion endpoint
	ids := identity.NewStore()
	trackSvc := track.NewService(ids, track.LogForwarder{}, cfg.Server.MaxBodySizeMB)

	// 4. Initialize the dispatch router. The direct-tag runtime belongs to the
	// pages; standalone the sink logs the emits it would hand over.
	sink := analytics.NewBufferedSink(func(name string, params map[string]any) {
		slog.Info("Direct-tag emit", "event", name, "params", params)
	})
	sink.Ready()

	relay := analytics.NewRelayClient(cfg.Analytics.RelayEndpoint)
	router := analytics.NewRouter(sink, relay)

	// 5. Initialize the storefront API on the cookie-backed cart store
	shopSvc := storefront.NewService(cart.NewCookieStore(), router, pricing, cfg.Store.Currency)

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode)
	srv.Engine.Use(experiment.Middleware(gate))
	trackSvc.RegisterRoutes(srv.Engine)
	shopSvc.RegisterRoutes(srv.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
