package catalog

import (
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/mamamansion/line-edge-go/internal/postback"
)

func textOf(t *testing.T, msg messaging_api.MessageInterface) string {
	t.Helper()
	tm, ok := msg.(*messaging_api.TextMessage)
	if !ok {
		t.Fatalf("message type = %T, want TextMessage", msg)
	}
	return tm.Text
}

func TestRoomReply(t *testing.T) {
	t.Parallel()

	c := New(Options{})

	t.Run("known code", func(t *testing.T) {
		t.Parallel()
		msgs := c.RoomReply("ROOM_RENT")
		if len(msgs) != 1 {
			t.Fatalf("message count = %d, want 1", len(msgs))
		}
		if got := textOf(t, msgs[0]); !strings.Contains(got, "3,800") {
			t.Errorf("ROOM_RENT text = %q, missing price", got)
		}
	})

	t.Run("rent image code appends three images", func(t *testing.T) {
		t.Parallel()
		msgs := c.RoomReply("ROOM_RENT_IMG")
		if len(msgs) != 4 {
			t.Fatalf("message count = %d, want text + 3 images", len(msgs))
		}
		for _, m := range msgs[1:] {
			if _, ok := m.(*messaging_api.ImageMessage); !ok {
				t.Errorf("trailing message type = %T, want ImageMessage", m)
			}
		}
	})

	t.Run("unknown code falls back", func(t *testing.T) {
		t.Parallel()
		msgs := c.RoomReply("ROOM_NOPE")
		if got := textOf(t, msgs[0]); got != roomFallback {
			t.Errorf("fallback = %q, want %q", got, roomFallback)
		}
	})
}

func TestFixAndResReplyFallBack(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	if got := textOf(t, c.FixReply("FIX_UNKNOWN")[0]); got != fixFallback {
		t.Errorf("fix fallback = %q, want %q", got, fixFallback)
	}
	if got := textOf(t, c.ResReply("RES_UNKNOWN")[0]); got != resFallback {
		t.Errorf("res fallback = %q, want %q", got, resFallback)
	}
}

func TestActFamilies(t *testing.T) {
	t.Parallel()

	if !IsRoomAct("ROOM_SIZE") || IsRoomAct("FIX_WATER") {
		t.Error("IsRoomAct misclassified")
	}
	if !IsFixAct("FIX_WATER") || IsFixAct("moveout_yes") {
		t.Error("IsFixAct misclassified")
	}
	if !IsResAct("RES_HOWTO") || IsResAct("ROOM_SIZE") {
		t.Error("IsResAct misclassified")
	}
}

func TestLabelAct(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	if act, ok := c.LabelAct("ค่าเช่า"); !ok || act != "ROOM_RENT" {
		t.Errorf("LabelAct(room label) = %q, %v", act, ok)
	}
	if act, ok := c.LabelAct("น้ำ/ท่อรั่ว"); !ok || act != "FIX_WATER" {
		t.Errorf("LabelAct(fix label) = %q, %v", act, ok)
	}
	if _, ok := c.LabelAct("random text"); ok {
		t.Error("LabelAct matched unmapped text")
	}
}

func TestQuickKeywordReply(t *testing.T) {
	t.Parallel()

	c := New(Options{})

	t.Run("contact exact match case-insensitive", func(t *testing.T) {
		t.Parallel()
		msgs := c.QuickKeywordReply("Contact")
		if msgs == nil {
			t.Fatal("contact phrase did not match")
		}
		if got := textOf(t, msgs[0]); !strings.Contains(got, "082-798-1676") {
			t.Errorf("contact reply = %q, missing manager number", got)
		}
	})

	t.Run("booking matches by substring with images", func(t *testing.T) {
		t.Parallel()
		msgs := c.QuickKeywordReply("ขอถามวิธีจองหน่อยค่ะ")
		if len(msgs) != 3 {
			t.Fatalf("message count = %d, want steps + 2 images", len(msgs))
		}
	})

	t.Run("no match returns nil", func(t *testing.T) {
		t.Parallel()
		if msgs := c.QuickKeywordReply("hello"); msgs != nil {
			t.Errorf("unexpected match: %v", msgs)
		}
	})

	t.Run("empty text returns nil", func(t *testing.T) {
		t.Parallel()
		if msgs := c.QuickKeywordReply("   "); msgs != nil {
			t.Errorf("unexpected match: %v", msgs)
		}
	})
}

func TestQuickKeywordReplyImageOverrides(t *testing.T) {
	t.Parallel()

	c := New(Options{
		HowtoImageURL1: "https://example.com/howto1.png",
	})
	msgs := c.QuickKeywordReply("วิธีจอง")
	if len(msgs) != 3 {
		t.Fatalf("message count = %d, want 3", len(msgs))
	}
	img, ok := msgs[1].(*messaging_api.ImageMessage)
	if !ok {
		t.Fatalf("message type = %T, want ImageMessage", msgs[1])
	}
	if img.OriginalContentUrl != "https://example.com/howto1.png" {
		t.Errorf("first image url = %q, want override", img.OriginalContentUrl)
	}
	second, ok := msgs[2].(*messaging_api.ImageMessage)
	if !ok {
		t.Fatalf("message type = %T, want ImageMessage", msgs[2])
	}
	if second.OriginalContentUrl != defaultBookingImageURLs[1] {
		t.Errorf("second image url = %q, want default", second.OriginalContentUrl)
	}
}

func TestAmenityMenuEmbedsIdentity(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	msgs := c.AmenityMenu("เช่าตู้เย็น", "Cabc", "Uxyz")
	if len(msgs) != 1 {
		t.Fatalf("message count = %d, want 1", len(msgs))
	}
	tmpl, ok := msgs[0].(*messaging_api.TemplateMessage)
	if !ok {
		t.Fatalf("message type = %T, want TemplateMessage", msgs[0])
	}
	buttons, ok := tmpl.Template.(*messaging_api.ButtonsTemplate)
	if !ok {
		t.Fatalf("template type = %T, want ButtonsTemplate", tmpl.Template)
	}
	pb, ok := buttons.Actions[0].(*messaging_api.PostbackAction)
	if !ok {
		t.Fatalf("action type = %T, want PostbackAction", buttons.Actions[0])
	}

	decoded := postback.Decode(pb.Data)
	if decoded.Act() != "fridge_req" {
		t.Errorf("act = %q, want fridge_req", decoded.Act())
	}
	if got := decoded.Get("chatId"); got != "Cabc" {
		t.Errorf("chatId = %q, want Cabc", got)
	}
	if got := decoded.Get("lineUserId"); got != "Uxyz" {
		t.Errorf("lineUserId = %q, want Uxyz", got)
	}
}

func TestAmenityMenuNoMatch(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	if msgs := c.AmenityMenu("สวัสดี", "C1", "U1"); msgs != nil {
		t.Errorf("unexpected amenity match: %v", msgs)
	}
}
