// Package forwarder relays events and derived payloads to the external
// backend services. Every call returns a boolean verdict, never an
// error: the dispatcher maps failures to user-facing fallbacks and the
// detail stays in the logs.
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mamamansion/line-edge-go/internal/config"
	"github.com/mamamansion/line-edge-go/internal/logger"
)

// Backend identifies one forward target. Lenient backends accept an
// HTTP success status as a verdict fallback when the JSON body carries
// no truthy "ok"; strict backends require ok to be true.
type Backend struct {
	Name    string
	URL     string
	Secret  string
	Lenient bool
}

// MetricsRecorder records forward attempts.
type MetricsRecorder interface {
	RecordForward(target string, ok bool, duration float64)
}

// Forwarder sends payloads to backends with the shared secret attached
// as both a body field and a header.
type Forwarder struct {
	client  *http.Client
	log     *logger.Logger
	metrics MetricsRecorder
}

// New creates a Forwarder. Redirects are followed manually so the
// request body can be reattached on every hop.
func New(log *logger.Logger, metrics MetricsRecorder) *Forwarder {
	return &Forwarder{
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log:     log.WithModule("forwarder"),
		metrics: metrics,
	}
}

// Forward sends payload to backend as JSON with the secret injected
// into the body under "workerSecret" and into the X-Worker-Secret
// header. A missing URL or secret short-circuits to false without a
// network call.
func (f *Forwarder) Forward(ctx context.Context, backend Backend, payload map[string]any) bool {
	if backend.URL == "" || backend.Secret == "" {
		f.log.WithFields(map[string]any{
			"target":     backend.Name,
			"has_url":    backend.URL != "",
			"has_secret": backend.Secret != "",
		}).Error("Forward skipped, missing config")
		return false
	}

	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["workerSecret"] = backend.Secret

	raw, err := json.Marshal(body)
	if err != nil {
		f.log.WithError(err).WithField("target", backend.Name).Error("Forward payload marshal failed")
		return false
	}

	return f.post(ctx, backend, raw)
}

// RelayRaw sends rawBody to backend byte-exact, only the secret header
// attached. Used for verbatim hand-offs where the body must not be
// re-serialized.
func (f *Forwarder) RelayRaw(ctx context.Context, backend Backend, rawBody []byte) bool {
	if backend.URL == "" {
		f.log.WithField("target", backend.Name).Error("Relay skipped, missing URL")
		return false
	}
	return f.post(ctx, backend, rawBody)
}

func (f *Forwarder) post(ctx context.Context, backend Backend, body []byte) bool {
	start := time.Now()
	ok := f.doPost(ctx, backend, body)
	if f.metrics != nil {
		f.metrics.RecordForward(backend.Name, ok, time.Since(start).Seconds())
	}
	return ok
}

func (f *Forwarder) doPost(ctx context.Context, backend Backend, body []byte) bool {
	target := backend.URL

	// Some backends answer with redirects that would drop the body if
	// followed by the transport, so each hop re-sends it explicitly.
	for hop := 0; hop <= config.ForwardMaxRedirects; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
		if err != nil {
			f.log.WithError(err).WithField("target", backend.Name).Error("Forward request build failed")
			return false
		}
		req.Header.Set("Content-Type", "application/json")
		if backend.Secret != "" {
			req.Header.Set("X-Worker-Secret", backend.Secret)
		}

		res, err := f.client.Do(req)
		if err != nil {
			f.log.WithError(err).WithField("target", backend.Name).Error("Forward request failed")
			return false
		}

		if isRedirect(res.StatusCode) {
			loc := res.Header.Get("Location")
			_, _ = io.Copy(io.Discard, res.Body)
			_ = res.Body.Close()
			if loc == "" {
				f.log.WithField("target", backend.Name).Error("Forward redirect without location")
				return false
			}
			next, err := res.Request.URL.Parse(loc)
			if err != nil {
				f.log.WithError(err).WithField("target", backend.Name).Error("Forward redirect location invalid")
				return false
			}
			target = next.String()
			continue
		}

		return f.evaluate(backend, res)
	}

	f.log.WithField("target", backend.Name).Error("Forward exceeded redirect limit")
	return false
}

// evaluate reads the response and derives the verdict. JSON bodies are
// judged by their "ok" field (with HTTP success as a fallback for
// lenient backends); anything else must be a success status with a
// body of exactly "OK".
func (f *Forwarder) evaluate(backend Backend, res *http.Response) bool {
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		f.log.WithError(err).WithField("target", backend.Name).Error("Forward response read failed")
		return false
	}

	httpOK := res.StatusCode >= 200 && res.StatusCode < 300
	contentType := strings.ToLower(res.Header.Get("Content-Type"))

	var ok bool
	if strings.Contains(contentType, "application/json") {
		var parsed struct {
			OK bool `json:"ok"`
		}
		_ = json.Unmarshal(raw, &parsed)
		ok = parsed.OK
		if backend.Lenient {
			ok = ok || httpOK
		}
	} else {
		ok = httpOK && strings.TrimSpace(string(raw)) == "OK"
	}

	f.log.WithFields(map[string]any{
		"target": backend.Name,
		"status": res.StatusCode,
		"ok":     ok,
	}).Info("Forward completed")
	return ok
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
