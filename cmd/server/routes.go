// Package main provides the LINE edge router server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamamansion/line-edge-go/internal/flowstore"
	"github.com/mamamansion/line-edge-go/internal/proxy"
	"github.com/mamamansion/line-edge-go/internal/webhook"
)

// setupRoutes configures all HTTP routes.
//
// Routing contract: OPTIONS anywhere answers the CORS preflight,
// /api/moveout* proxies to the move-out API, and every other path is
// the webhook surface: POST enters the pipeline, anything else gets a
// keep-alive 200 "OK".
func setupRoutes(router *gin.Engine, webhookHandler *webhook.Handler, proxyHandler *proxy.Handler, flows *flowstore.Store, registry *prometheus.Registry, allowedOrigin string) {
	// CORS preflight for the browser frontend
	router.OPTIONS("/*path", func(c *gin.Context) {
		proxy.SetCORSHeaders(c, allowedOrigin)
		c.Status(http.StatusNoContent)
	})

	// Frontend API proxy
	router.GET("/api/moveout", proxyHandler.Handle)
	router.POST("/api/moveout", proxyHandler.Handle)
	router.GET("/api/moveout/*rest", proxyHandler.Handle)
	router.POST("/api/moveout/*rest", proxyHandler.Handle)

	// Liveness probe: process is up, no dependency checks.
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe: flow store reachable.
	readyHandler := func(c *gin.Context) {
		if err := flows.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"flow_store": "connected",
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Everything else is the LINE webhook surface.
	router.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodPost {
			webhookHandler.Handle(c)
			return
		}
		c.String(http.StatusOK, "OK")
	})
}
