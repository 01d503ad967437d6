// Package webhook receives LINE webhook requests: it gates them on the
// channel-secret signature over the exact raw body, parses the event
// batch, and hands it to the dispatcher.
package webhook

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mamamansion/line-edge-go/internal/ctxutil"
	"github.com/mamamansion/line-edge-go/internal/event"
	"github.com/mamamansion/line-edge-go/internal/logger"
	"github.com/mamamansion/line-edge-go/internal/metrics"
	"github.com/mamamansion/line-edge-go/internal/signature"
)

// Dispatcher consumes a verified event batch.
type Dispatcher interface {
	HandleWebhook(ctx context.Context, rawBody []byte, events []event.Event)
}

// Handler handles LINE webhook requests.
type Handler struct {
	channelSecret string
	dispatcher    Dispatcher
	log           *logger.Logger
	metrics       *metrics.Metrics
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	ChannelSecret string
	Dispatcher    Dispatcher
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
}

// NewHandler creates a webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		channelSecret: cfg.ChannelSecret,
		dispatcher:    cfg.Dispatcher,
		log:           cfg.Logger.WithModule("webhook"),
		metrics:       cfg.Metrics,
	}
}

// Handle is the Gin handler for the webhook endpoint. The body is read
// raw so the signature covers the exact bytes LINE signed and so the
// dispatcher can relay it verbatim.
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.WithError(err).Error("Failed to read webhook body")
		h.metrics.RecordHTTPError("body_read")
		c.Status(http.StatusInternalServerError)
		return
	}

	sig := c.GetHeader("x-line-signature")
	if !signature.Verify(h.channelSecret, body, sig) {
		h.log.Warn("Invalid webhook signature")
		h.metrics.RecordHTTPError("unauthorized")
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestID := uuid.NewString()
	log := h.log.WithRequestID(requestID)
	ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)

	events := event.ParseBody(body)
	log.WithField("event_count", len(events)).Info("Webhook received")

	// Dispatch completes, deferred forwards included, before the
	// response is written.
	start := time.Now()
	h.dispatcher.HandleWebhook(ctx, body, events)
	duration := time.Since(start).Seconds()

	for i := range events {
		h.metrics.RecordWebhook(events[i].Type, "processed", duration)
	}

	c.String(http.StatusOK, "OK")
}
