package lineutil

import (
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

func TestNewTextMessageTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 6000)
	msg := NewTextMessage(long)
	if len(msg.Text) > 5000 {
		t.Errorf("text length = %d, want <= 5000", len(msg.Text))
	}
	if !strings.HasSuffix(msg.Text, "...") {
		t.Error("truncated text missing ellipsis")
	}
}

func TestNewButtonsTemplateLimits(t *testing.T) {
	t.Parallel()

	actions := []Action{
		NewPostbackAction("1", "act=a"),
		NewPostbackAction("2", "act=b"),
		NewPostbackAction("3", "act=c"),
		NewPostbackAction("4", "act=d"),
		NewPostbackAction("5", "act=e"),
	}

	msg := NewButtonsTemplate("alt", "title", "text", actions)
	tmpl, ok := msg.(*messaging_api.TemplateMessage)
	if !ok {
		t.Fatalf("message type = %T, want TemplateMessage", msg)
	}
	buttons, ok := tmpl.Template.(*messaging_api.ButtonsTemplate)
	if !ok {
		t.Fatalf("template type = %T, want ButtonsTemplate", tmpl.Template)
	}
	if len(buttons.Actions) != 4 {
		t.Errorf("action count = %d, want capped at 4", len(buttons.Actions))
	}
}

func TestNewQuickReplyCapsItems(t *testing.T) {
	t.Parallel()

	items := make([]QuickReplyItem, 15)
	for i := range items {
		items[i] = QuickReplyItem{Action: NewMessageAction("m", "m")}
	}
	qr := NewQuickReply(items)
	if len(qr.Items) != 13 {
		t.Errorf("quick reply items = %d, want capped at 13", len(qr.Items))
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"สวัสดีค่ะ", 3, "สวั"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.s, tt.n); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}
