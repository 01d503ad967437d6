// Package main provides the LINE edge router server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mamamansion/line-edge-go/internal/buildinfo"
	"github.com/mamamansion/line-edge-go/internal/catalog"
	"github.com/mamamansion/line-edge-go/internal/config"
	"github.com/mamamansion/line-edge-go/internal/dispatcher"
	"github.com/mamamansion/line-edge-go/internal/flowstore"
	"github.com/mamamansion/line-edge-go/internal/forwarder"
	"github.com/mamamansion/line-edge-go/internal/logger"
	"github.com/mamamansion/line-edge-go/internal/messenger"
	"github.com/mamamansion/line-edge-go/internal/metrics"
	"github.com/mamamansion/line-edge-go/internal/proxy"
	"github.com/mamamansion/line-edge-go/internal/sentry"
	"github.com/mamamansion/line-edge-go/internal/webhook"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, logger.Options{
		BetterStackToken: cfg.BetterStackToken,
	})
	log.WithField("release", buildinfo.Release()).Info("Starting LINE edge router")

	// Initialize error tracking (disabled when no token is configured)
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Release(),
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, continuing without error tracking")
	} else if sentry.IsEnabled() {
		defer sentry.Flush(2 * time.Second)
		log.Info("Sentry initialized")
	}

	// Open the flow store. A failed open degrades to stateless dispatch
	// rather than refusing to start; the flow-gated paths then take
	// their conservative branches.
	flows, err := flowstore.New(cfg.FlowStorePath(), cfg.FlowTTL, log)
	if err != nil {
		log.WithError(err).Error("Failed to open flow store, running without flow state")
		flows = nil
	} else {
		log.WithField("path", cfg.FlowStorePath()).
			WithField("flow_ttl", cfg.FlowTTL).
			Info("Flow store connected")
	}

	// Create Prometheus registry with Go and process collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	flows.SetMetrics(m)
	log.Info("Metrics initialized")

	// Outbound LINE channels
	msgr, err := messenger.NewLine(cfg.LineChannelToken, log, m)
	if err != nil {
		log.WithError(err).Error("Failed to create LINE messenger")
		os.Exit(1)
	}

	// Backend forwarder and targets
	fwd := forwarder.New(log, m)
	backends := dispatcher.Backends{
		Primary: forwarder.Backend{
			Name: "primary", URL: cfg.PrimaryBackendURL, Secret: cfg.WorkerSecret,
		},
		Rent: forwarder.Backend{
			Name: "rent", URL: cfg.PayRentBackendURL, Secret: cfg.WorkerSecret, Lenient: true,
		},
		Automation: forwarder.Backend{
			Name: "automation", URL: cfg.AutomationRelayURL, Secret: cfg.WorkerSecret, Lenient: true,
		},
		FridgeHook: forwarder.Backend{
			Name: "fridge", URL: cfg.FridgeHookURL, Secret: cfg.WorkerSecret, Lenient: true,
		},
		ParkingHook: forwarder.Backend{
			Name: "parking", URL: cfg.ParkingHookURL, Secret: cfg.WorkerSecret, Lenient: true,
		},
	}

	// Dispatcher and webhook pipeline
	disp := dispatcher.New(dispatcher.Config{
		Log:     log,
		Catalog: catalog.New(catalog.Options{
			HowtoImageURL1: cfg.HowtoImageURL1,
			HowtoImageURL2: cfg.HowtoImageURL2,
		}),
		Messenger: msgr,
		Forwarder: fwd,
		Flows:     flows,
		Backends:  backends,
	})

	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret: cfg.LineChannelSecret,
		Dispatcher:    disp,
		Logger:        log,
		Metrics:       m,
	})

	proxyHandler := proxy.New(proxy.Config{
		TargetURL:     cfg.MoveoutAPIURL,
		Secret:        cfg.WorkerSecret,
		AllowedOrigin: cfg.AllowedOrigin,
		Logger:        log,
		Metrics:       m,
	})
	log.Info("Webhook pipeline created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	setupRoutes(router, webhookHandler, proxyHandler, flows, registry, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.ServerHTTPRead,
		WriteTimeout: config.ServerHTTPWrite,
		IdleTimeout:  config.ServerHTTPIdle,
	}

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in flow cleanup goroutine")
			}
		}()
		cleanupExpiredFlows(ctx, flows, log)
	}()

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()

	select {
	case <-goDone:
		log.Info("Background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if err := flows.Close(); err != nil {
		log.WithError(err).Error("Failed to close flow store")
	}

	log.Info("Server stopped")
}
