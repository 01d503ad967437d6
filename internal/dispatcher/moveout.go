package dispatcher

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/mamamansion/line-edge-go/internal/event"
	"github.com/mamamansion/line-edge-go/internal/lineutil"
)

var (
	isoDateRE   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	phoneRE     = regexp.MustCompile(`^0\d{9}$`)
	phoneMaskRE = regexp.MustCompile(`^(\d{3})\d{4}(\d{3})$`)
)

// handleMoveout resolves the move-out confirmation postbacks entirely
// at the edge. Exactly one reply is sent per invocation; when the reply
// token is absent the path aborts with a logged error instead of
// falling back to push.
func (d *Dispatcher) handleMoveout(ctx context.Context, ev *event.Event, act string) {
	key := moveoutKey(ev)

	if act == "moveout_cancel" {
		d.flows.Delete(ctx, key)
		d.replyMoveout(ev, "ยกเลิกขั้นตอนแจ้งออกแล้วค่ะ")
		return
	}

	// Confirmation fields come from the stored flow record, never from
	// the postback payload the client controls.
	flow, _ := d.flows.Get(ctx, key)
	room := strings.ToUpper(strings.TrimSpace(flow.Room))
	iso := strings.TrimSpace(flow.DateISO)
	phone := strings.TrimSpace(flow.Phone)

	if room == "" || !isoDateRE.MatchString(iso) || !phoneRE.MatchString(phone) {
		d.log.WithFields(map[string]any{
			"has_room":  room != "",
			"has_date":  isoDateRE.MatchString(iso),
			"has_phone": phoneRE.MatchString(phone),
		}).Error("Moveout confirm with invalid or missing flow state")
		d.replyMoveout(ev, "ไม่สามารถยืนยันข้อมูลได้ กรุณาเริ่มขั้นตอนใหม่อีกครั้งค่ะ")
		d.flows.Delete(ctx, key)
		return
	}

	if err := d.msgr.StartLoading(ev.ChatID(), 15); err != nil {
		d.log.WithError(err).Warn("Moveout loading indicator failed")
	}

	// The verdict decides the single final reply, so this forward is
	// synchronous.
	ok := d.fwd.Forward(ctx, d.backends.Primary, map[string]any{
		"act":        "moveout",
		"roomId":     room,
		"dateISO":    iso,
		"phone":      phone,
		"lineUserId": ev.UserID(),
	})

	d.flows.Delete(ctx, key)

	if ok {
		d.replyMoveout(ev, fmt.Sprintf("✅ รับแจ้งออกแล้ว\nห้อง %s จะว่างตั้งแต่ %s\nเบอร์ติดต่อ: %s",
			room, reverseISODate(iso), maskPhone(phone)))
		return
	}
	d.replyMoveout(ev, "❗บันทึกไม่สำเร็จ โปรดลองใหม่หรือติดต่อผู้ดูแลค่ะ")
}

func (d *Dispatcher) replyMoveout(ev *event.Event, text string) {
	if ev.ReplyToken == "" {
		d.log.WithField("chat_id", ev.ChatID()).Error("Moveout reply skipped, no reply token")
		return
	}
	if err := d.msgr.Reply(ev.ReplyToken, []messaging_api.MessageInterface{
		lineutil.NewTextMessage(text),
	}); err != nil {
		d.log.WithError(err).Error("Moveout reply failed")
	}
}

// maskPhone hides the middle four digits of a 10-digit phone number.
// Input not matching that shape is returned unchanged.
func maskPhone(phone string) string {
	return phoneMaskRE.ReplaceAllString(phone, "$1••••$2")
}

// reverseISODate renders YYYY-MM-DD as DD/MM/YYYY for display.
func reverseISODate(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
