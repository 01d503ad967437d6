package dispatcher

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mamamansion/line-edge-go/internal/flowstore"
)

func putMoveoutFlow(t *testing.T, flows *memFlows, key string, rec flowstore.Record) {
	t.Helper()
	flows.Put(context.Background(), key, rec)
}

func TestMoveoutCancel(t *testing.T) {
	t.Parallel()

	d, msgr, fwd, flows := newTestDispatcher(t)
	ev := postbackEvent(t, "act=moveout_cancel")
	putMoveoutFlow(t, flows, moveoutKey(&ev), flowstore.Record{Step: "confirm", Room: "A101"})

	dispatchOne(d, ev)

	if _, ok := flows.Get(context.Background(), moveoutKey(&ev)); ok {
		t.Error("flow record survived cancel")
	}
	if len(msgr.replies) != 1 {
		t.Fatalf("reply count = %d, want 1", len(msgr.replies))
	}
	if got := replyText(t, msgr.replies[0]); !strings.Contains(got, "ยกเลิก") {
		t.Errorf("cancel reply = %q, want cancellation notice", got)
	}
	if len(fwd.forwards) != 0 {
		t.Errorf("cancel reached the forwarder: %v", fwd.targets())
	}
}

func TestMoveoutConfirmSuccess(t *testing.T) {
	t.Parallel()

	d, msgr, fwd, flows := newTestDispatcher(t)
	// Postback carries tampered fields; the stored flow is authoritative.
	ev := postbackEvent(t, "act=moveout_yes&roomId=EVIL&dateISO=2099-01-01")
	putMoveoutFlow(t, flows, moveoutKey(&ev), flowstore.Record{
		Step: "confirm", Room: "a101", DateISO: "2025-03-01", Phone: "0812345678",
		TS: time.Now().UnixMilli(),
	})

	dispatchOne(d, ev)

	if len(fwd.forwards) != 1 {
		t.Fatalf("forward count = %d, want 1", len(fwd.forwards))
	}
	payload := fwd.forwards[0].payload
	if payload["act"] != "moveout" || payload["roomId"] != "A101" || payload["dateISO"] != "2025-03-01" {
		t.Errorf("forward payload = %v, want stored flow fields", payload)
	}
	if payload["phone"] != "0812345678" || payload["lineUserId"] != "U1" {
		t.Errorf("forward payload identity = %v", payload)
	}

	if len(msgr.replies) != 1 {
		t.Fatalf("reply count = %d, want exactly 1", len(msgr.replies))
	}
	got := replyText(t, msgr.replies[0])
	for _, want := range []string{"A101", "01/03/2025", "081••••678"} {
		if !strings.Contains(got, want) {
			t.Errorf("success reply = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "0812345678") {
		t.Error("success reply leaks the unmasked phone number")
	}
	if len(msgr.loadings) != 1 {
		t.Errorf("loading count = %d, want 1", len(msgr.loadings))
	}
	if _, ok := flows.Get(context.Background(), moveoutKey(&ev)); ok {
		t.Error("flow record survived confirmation")
	}
}

func TestMoveoutConfirmBackendFailure(t *testing.T) {
	t.Parallel()

	d, msgr, fwd, flows := newTestDispatcher(t)
	fwd.verdicts = map[string]bool{"primary": false}
	ev := postbackEvent(t, "act=moveout_yes")
	putMoveoutFlow(t, flows, moveoutKey(&ev), flowstore.Record{
		Room: "A101", DateISO: "2025-03-01", Phone: "0812345678",
	})

	dispatchOne(d, ev)

	if len(msgr.replies) != 1 {
		t.Fatalf("reply count = %d, want exactly 1", len(msgr.replies))
	}
	if got := replyText(t, msgr.replies[0]); !strings.Contains(got, "ไม่สำเร็จ") {
		t.Errorf("failure reply = %q, want generic failure", got)
	}
	if _, ok := flows.Get(context.Background(), moveoutKey(&ev)); ok {
		t.Error("flow record must be deleted regardless of backend outcome")
	}
}

func TestMoveoutConfirmInvalidFlow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  *flowstore.Record
	}{
		{"missing flow", nil},
		{"bad date", &flowstore.Record{Room: "A101", DateISO: "01/03/2025", Phone: "0812345678"}},
		{"bad phone", &flowstore.Record{Room: "A101", DateISO: "2025-03-01", Phone: "12345"}},
		{"empty room", &flowstore.Record{DateISO: "2025-03-01", Phone: "0812345678"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, msgr, fwd, flows := newTestDispatcher(t)
			ev := postbackEvent(t, "act=moveout_yes")
			if tt.rec != nil {
				putMoveoutFlow(t, flows, moveoutKey(&ev), *tt.rec)
			}

			dispatchOne(d, ev)

			if len(fwd.forwards) != 0 {
				t.Error("invalid flow state still called the backend")
			}
			if len(msgr.replies) != 1 {
				t.Fatalf("reply count = %d, want 1", len(msgr.replies))
			}
			if got := replyText(t, msgr.replies[0]); !strings.Contains(got, "เริ่มขั้นตอนใหม่") {
				t.Errorf("restart reply = %q", got)
			}
			if _, ok := flows.Get(context.Background(), moveoutKey(&ev)); ok {
				t.Error("invalid flow record was not cleared")
			}
		})
	}
}

func TestMoveoutMissingReplyTokenAbortsSilently(t *testing.T) {
	t.Parallel()

	d, msgr, _, flows := newTestDispatcher(t)
	ev := makeEvent(t, map[string]any{
		"type":     "postback",
		"source":   map[string]any{"type": "user", "userId": "U1"},
		"postback": map[string]any{"data": "act=moveout_cancel"},
	})
	putMoveoutFlow(t, flows, moveoutKey(&ev), flowstore.Record{Step: "confirm"})

	dispatchOne(d, ev)

	if len(msgr.replies) != 0 {
		t.Errorf("reply count = %d, want 0 without a token", len(msgr.replies))
	}
	if _, ok := flows.Get(context.Background(), moveoutKey(&ev)); ok {
		t.Error("flow record survived cancel")
	}
}

func TestMaskPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"0812345678", "081••••678"},
		{"0906490441", "090••••441"},
		{"12345", "12345"},
		{"", ""},
		{"A812345678", "A812345678"},
	}
	for _, tt := range tests {
		if got := maskPhone(tt.in); got != tt.want {
			t.Errorf("maskPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReverseISODate(t *testing.T) {
	t.Parallel()

	if got := reverseISODate("2025-03-01"); got != "01/03/2025" {
		t.Errorf("reverseISODate = %q, want 01/03/2025", got)
	}
	if got := reverseISODate("garbage"); got != "garbage" {
		t.Errorf("reverseISODate passthrough = %q", got)
	}
}
