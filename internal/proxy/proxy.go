// Package proxy fronts the move-out API for the browser: it forwards
// /api/moveout requests to the backend with the shared secret injected
// server-side, so the secret never reaches the client.
package proxy

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mamamansion/line-edge-go/internal/logger"
	"github.com/mamamansion/line-edge-go/internal/metrics"
)

// SetCORSHeaders writes the CORS response headers. origin falls back to
// the wildcard when unset.
func SetCORSHeaders(c *gin.Context, origin string) {
	if origin == "" {
		origin = "*"
	}
	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Header("Vary", "Origin")
}

// Handler proxies frontend requests to the move-out API.
type Handler struct {
	target        string
	secret        string
	allowedOrigin string
	client        *http.Client
	log           *logger.Logger
	metrics       *metrics.Metrics
}

// Config wires a proxy Handler.
type Config struct {
	TargetURL     string
	Secret        string
	AllowedOrigin string
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
}

// New creates a proxy Handler.
func New(cfg Config) *Handler {
	return &Handler{
		target:        cfg.TargetURL,
		secret:        cfg.Secret,
		allowedOrigin: cfg.AllowedOrigin,
		client:        &http.Client{},
		log:           cfg.Logger.WithModule("proxy"),
		metrics:       cfg.Metrics,
	}
}

// Handle proxies one request. GET requests carry the secret as a "ws"
// query parameter; other methods get it injected into the JSON body as
// "workerSecret". Response status, body, and content type pass through
// unchanged.
func (h *Handler) Handle(c *gin.Context) {
	SetCORSHeaders(c, h.allowedOrigin)

	if h.target == "" {
		h.log.Error("Proxy target not configured")
		h.metrics.RecordHTTPError("proxy_unconfigured")
		c.String(http.StatusServiceUnavailable, "proxy unavailable")
		return
	}

	target, err := url.Parse(h.target)
	if err != nil {
		h.log.WithError(err).Error("Proxy target URL invalid")
		h.metrics.RecordHTTPError("proxy_unconfigured")
		c.String(http.StatusServiceUnavailable, "proxy unavailable")
		return
	}

	query := c.Request.URL.Query()
	if h.secret != "" {
		query.Set("ws", h.secret)
	}
	target.RawQuery = query.Encode()

	var body io.Reader
	contentType := ""
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			h.log.WithError(err).Error("Proxy body read failed")
			h.metrics.RecordProxyRequest("error")
			c.String(http.StatusBadGateway, "proxy failure")
			return
		}

		fields := map[string]any{}
		if len(raw) > 0 {
			// Unparseable bodies degrade to an empty object.
			_ = json.Unmarshal(raw, &fields)
		}
		if h.secret != "" {
			fields["workerSecret"] = h.secret
		}
		encoded, err := json.Marshal(fields)
		if err != nil {
			h.log.WithError(err).Error("Proxy body encode failed")
			h.metrics.RecordProxyRequest("error")
			c.String(http.StatusBadGateway, "proxy failure")
			return
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target.String(), body)
	if err != nil {
		h.log.WithError(err).Error("Proxy request build failed")
		h.metrics.RecordProxyRequest("error")
		c.String(http.StatusBadGateway, "proxy failure")
		return
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := h.client.Do(req)
	if err != nil {
		h.log.WithError(err).Error("Proxy request failed")
		h.metrics.RecordProxyRequest("error")
		c.String(http.StatusBadGateway, "proxy failure")
		return
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		h.log.WithError(err).Error("Proxy response read failed")
		h.metrics.RecordProxyRequest("error")
		c.String(http.StatusBadGateway, "proxy failure")
		return
	}

	resContentType := res.Header.Get("Content-Type")
	if resContentType == "" {
		resContentType = "application/json"
	}

	h.metrics.RecordProxyRequest(statusClass(res.StatusCode))
	c.Data(res.StatusCode, resContentType, resBody)
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
