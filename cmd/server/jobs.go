// Package main provides the LINE edge router server entry point.
package main

import (
	"context"
	"time"

	"github.com/mamamansion/line-edge-go/internal/config"
	"github.com/mamamansion/line-edge-go/internal/flowstore"
	"github.com/mamamansion/line-edge-go/internal/logger"
)

// cleanupExpiredFlows periodically removes expired flow records.
// Reads already treat expired rows as absent; this job just keeps the
// database from accumulating dead rows.
func cleanupExpiredFlows(ctx context.Context, flows *flowstore.Store, log *logger.Logger) {
	ticker := time.NewTicker(config.FlowCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			n, err := flows.CleanupExpired(cleanupCtx)
			cancel()
			if err != nil {
				log.WithError(err).Error("Flow cleanup failed")
				continue
			}
			if n > 0 {
				log.WithField("removed", n).Info("Expired flow records cleaned up")
			}
		}
	}
}
