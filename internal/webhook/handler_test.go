package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mamamansion/line-edge-go/internal/ctxutil"
	"github.com/mamamansion/line-edge-go/internal/event"
	"github.com/mamamansion/line-edge-go/internal/logger"
	"github.com/mamamansion/line-edge-go/internal/metrics"
)

const testSecret = "channel-secret"

type capturedDispatch struct {
	rawBody   []byte
	events    []event.Event
	requestID string
}

type fakeDispatcher struct {
	calls []capturedDispatch
}

func (f *fakeDispatcher) HandleWebhook(ctx context.Context, rawBody []byte, events []event.Event) {
	id, _ := ctxutil.GetRequestID(ctx)
	f.calls = append(f.calls, capturedDispatch{rawBody, events, id})
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeDispatcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d := &fakeDispatcher{}
	h := NewHandler(HandlerConfig{
		ChannelSecret: testSecret,
		Dispatcher:    d,
		Logger:        logger.New("error"),
		Metrics:       metrics.New(prometheus.NewRegistry()),
	})

	r := gin.New()
	r.POST("/", h.Handle)
	return r, d
}

func TestHandleValidSignature(t *testing.T) {
	t.Parallel()

	r, d := newTestRouter(t)
	body := `{"events":[{"type":"message","replyToken":"rt","source":{"type":"user","userId":"U1"},"message":{"id":"1","type":"text","text":"hi"}}]}`

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("x-line-signature", sign(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", w.Body.String())
	}
	if len(d.calls) != 1 {
		t.Fatalf("dispatch count = %d, want 1", len(d.calls))
	}
	if string(d.calls[0].rawBody) != body {
		t.Error("dispatcher did not receive the raw body verbatim")
	}
	if len(d.calls[0].events) != 1 || d.calls[0].events[0].Type != "message" {
		t.Errorf("dispatched events = %+v", d.calls[0].events)
	}
	if d.calls[0].requestID == "" {
		t.Error("dispatch context missing request id")
	}
}

func TestHandleRejectsBadSignature(t *testing.T) {
	t.Parallel()

	r, d := newTestRouter(t)
	body := `{"events":[]}`

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("x-line-signature", sign(body+"tampered"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if len(d.calls) != 0 {
		t.Error("unauthorized request reached the dispatcher")
	}
}

func TestHandleRejectsMissingSignature(t *testing.T) {
	t.Parallel()

	r, d := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"events":[]}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if len(d.calls) != 0 {
		t.Error("unsigned request reached the dispatcher")
	}
}

func TestHandleMalformedBodyStillDispatchesEmpty(t *testing.T) {
	t.Parallel()

	r, d := newTestRouter(t)
	body := `not json at all`

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("x-line-signature", sign(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// A correctly signed but unparseable body degrades to zero events.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(d.calls) != 1 {
		t.Fatalf("dispatch count = %d, want 1", len(d.calls))
	}
	if len(d.calls[0].events) != 0 {
		t.Errorf("events = %d, want 0", len(d.calls[0].events))
	}
}
