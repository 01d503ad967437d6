// Package dispatcher implements the per-event decision procedure: an
// ordered rule list that classifies each inbound event and answers it
// locally, forwards it to a backend, or both. Rule order is part of the
// contract; conditions overlap and the first match wins.
package dispatcher

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"golang.org/x/sync/errgroup"

	"github.com/mamamansion/line-edge-go/internal/catalog"
	"github.com/mamamansion/line-edge-go/internal/config"
	"github.com/mamamansion/line-edge-go/internal/event"
	"github.com/mamamansion/line-edge-go/internal/flowstore"
	"github.com/mamamansion/line-edge-go/internal/forwarder"
	"github.com/mamamansion/line-edge-go/internal/lineutil"
	"github.com/mamamansion/line-edge-go/internal/logger"
	"github.com/mamamansion/line-edge-go/internal/messenger"
	"github.com/mamamansion/line-edge-go/internal/postback"
)

// Forwarder is the backend relay surface the dispatcher depends on.
type Forwarder interface {
	Forward(ctx context.Context, backend forwarder.Backend, payload map[string]any) bool
	RelayRaw(ctx context.Context, backend forwarder.Backend, rawBody []byte) bool
}

// FlowStore is the per-conversation state surface. A nil *flowstore.Store
// satisfies it with conservative no-ops.
type FlowStore interface {
	Get(ctx context.Context, key string) (flowstore.Record, bool)
	Put(ctx context.Context, key string, rec flowstore.Record)
	Delete(ctx context.Context, key string)
}

// Backends names the forward targets. Primary is strict about its
// verdict; rent and automation accept HTTP success as a fallback.
type Backends struct {
	Primary     forwarder.Backend
	Rent        forwarder.Backend
	Automation  forwarder.Backend
	FridgeHook  forwarder.Backend
	ParkingHook forwarder.Backend
}

// Config wires a Dispatcher.
type Config struct {
	Log       *logger.Logger
	Catalog   *catalog.Catalog
	Messenger messenger.Messenger
	Forwarder Forwarder
	Flows     FlowStore
	Backends  Backends
}

// Dispatcher routes inbound events.
type Dispatcher struct {
	log      *logger.Logger
	catalog  *catalog.Catalog
	msgr     messenger.Messenger
	fwd      Forwarder
	flows    FlowStore
	backends Backends
	now      func() time.Time
}

// New creates a Dispatcher from cfg.
func New(cfg Config) *Dispatcher {
	return &Dispatcher{
		log:      cfg.Log.WithModule("dispatcher"),
		catalog:  cfg.Catalog,
		msgr:     cfg.Messenger,
		fwd:      cfg.Forwarder,
		flows:    cfg.Flows,
		backends: cfg.Backends,
		now:      time.Now,
	}
}

var (
	moveoutTriggerRE = regexp.MustCompile(`^\s*(แจ้งออก)\s*$`)
	rentTriggerRE    = regexp.MustCompile(`(?i)^\s*(ส่งสลิปค่าเช่า|ชำระค่าเช่า|send\s*rent\s*slip|pay\s*rent)\s*$`)
	bookingCodeRE    = regexp.MustCompile(`(?i)^#?\s*MM\d{3,}$`)
	roomLikeRE       = regexp.MustCompile(`(?i)^[A-Z]?\d{3,4}$`)
)

var rentSubActs = map[string]bool{
	"pick_month":  true,
	"quick_month": true,
	"upload":      true,
	"status":      true,
	"faq":         true,
	"howto":       true,
}

// HandleWebhook processes one verified event batch. Deferred side
// effects spawned during dispatch are awaited before it returns, so
// fire-and-forget forwards always complete within the request lifetime.
func (d *Dispatcher) HandleWebhook(ctx context.Context, rawBody []byte, events []event.Event) {
	g := new(errgroup.Group)

	d.automationPrePass(ctx, g, rawBody, events)

	for i := range events {
		d.dispatchEvent(ctx, g, &events[i])
	}

	_ = g.Wait()
}

// automationPrePass relays the whole raw body to the automation
// endpoint when the batch leads with an automation-shaped postback.
// Runs before and independent of per-event dispatch.
func (d *Dispatcher) automationPrePass(ctx context.Context, g *errgroup.Group, rawBody []byte, events []event.Event) {
	if len(events) == 0 || events[0].Type != "postback" {
		return
	}
	data := postback.Decode(events[0].PostbackData())
	if data.Get("domain") != "automation" || data.Act() == "" {
		return
	}

	body := append([]byte(nil), rawBody...)
	d.spawn(g, func() {
		d.fwd.RelayRaw(ctx, d.backends.Automation, body)
	})
}

func (d *Dispatcher) dispatchEvent(ctx context.Context, g *errgroup.Group, ev *event.Event) {
	switch ev.Type {
	case "postback":
		d.dispatchPostback(ctx, g, ev)
	case "message":
		switch ev.MessageType() {
		case "text":
			d.dispatchText(ctx, g, ev)
		case "image":
			d.dispatchImage(ctx, g, ev)
		}
	case "follow", "join":
		d.forwardEventAsync(ctx, g, d.backends.Primary, ev)
	}
}

func (d *Dispatcher) dispatchPostback(ctx context.Context, g *errgroup.Group, ev *event.Event) {
	data := postback.Decode(ev.PostbackData())
	act := data.Act()

	switch act {
	case "moveout_yes", "moveout_cancel":
		d.handleMoveout(ctx, ev, act)
		return

	case "mgr_approve", "mgr_reject":
		text := "รับทราบ ✓ กำลังบันทึกและแจ้งผู้จัดการ…"
		if act == "mgr_reject" {
			text = "รับทราบ ✓ ส่งเข้า Review Queue แล้ว…"
		}
		d.replyAsync(g, ev, []messaging_api.MessageInterface{lineutil.NewTextMessage(text)})
		d.forwardEventAsync(ctx, g, d.backends.Primary, ev)
		return

	case "pay_rent":
		d.forwardEventAsync(ctx, g, d.backends.Primary, ev)
		return

	case "rent_cancel":
		d.flows.Delete(ctx, payrentKey(ev))
		d.replyAsync(g, ev, []messaging_api.MessageInterface{
			lineutil.NewTextMessage("❌ ยกเลิกขั้นตอนชำระค่าเช่าแล้วครับ/ค่ะ"),
		})
		d.forwardEventAsync(ctx, g, d.backends.Primary, ev)
		return

	case "fridge_req", "parking_req":
		d.handleAmenityRequest(ctx, g, ev, act)
		return
	}

	switch {
	case catalog.IsRoomAct(act):
		d.replyAsync(g, ev, d.catalog.RoomReply(act))
		return
	case catalog.IsFixAct(act):
		d.replyAsync(g, ev, d.catalog.FixReply(act))
		return
	case catalog.IsResAct(act):
		d.replyAsync(g, ev, d.catalog.ResReply(act))
		return
	}

	if data.Scope() == "payrent" || rentSubActs[act] {
		d.handleRentSubAction(ctx, ev)
		return
	}

	// Heavy postbacks: quick ack, backend does the work.
	d.replyAsync(g, ev, []messaging_api.MessageInterface{lineutil.NewTextMessage("กำลังตรวจสอบ…")})
	d.forwardEventAsync(ctx, g, d.backends.Primary, ev)
}

// handleAmenityRequest notifies the amenity hook with a sanitized
// payload. The conversation and user ids come from the verified event
// source, never from the postback data the client could have edited.
func (d *Dispatcher) handleAmenityRequest(ctx context.Context, g *errgroup.Group, ev *event.Event, act string) {
	payload := map[string]any{
		"act":        act,
		"chatId":     ev.ChatID(),
		"lineUserId": ev.UserID(),
	}

	switch act {
	case "fridge_req":
		d.spawn(g, func() { d.fwd.Forward(ctx, d.backends.FridgeHook, payload) })
		d.replyAsync(g, ev, d.catalog.FridgeAck())
	case "parking_req":
		d.spawn(g, func() { d.fwd.Forward(ctx, d.backends.ParkingHook, payload) })
		d.replyAsync(g, ev, d.catalog.ParkingAck())
		d.spawn(g, func() { d.fwd.Forward(ctx, d.backends.Primary, payload) })
	}
}

// handleRentSubAction pushes a wait notice (push, so the single-use
// reply token stays available for the backend's definitive reply),
// starts the loading indicator, and forwards synchronously to the rent
// backend. This is the one postback path that blocks on a backend.
func (d *Dispatcher) handleRentSubAction(ctx context.Context, ev *event.Event) {
	if err := d.msgr.Push(ev.ChatID(), []messaging_api.MessageInterface{
		lineutil.NewTextMessage("โปรดรอสักครู่…"),
	}); err != nil {
		d.log.WithError(err).Warn("Rent wait push failed")
	}
	if err := d.msgr.StartLoading(ev.ChatID(), 6); err != nil {
		d.log.WithError(err).Warn("Rent loading indicator failed")
	}

	d.flows.Put(ctx, payrentKey(ev), flowstore.Record{Step: "await_slip", TS: d.now().UnixMilli()})

	d.fwd.Forward(ctx, d.backends.Rent, map[string]any{"events": []any{ev.Raw}})
}

func (d *Dispatcher) dispatchText(ctx context.Context, g *errgroup.Group, ev *event.Event) {
	text := trimmedText(ev)

	// (A) Move-out trigger: ack now, backend issues the magic link.
	if moveoutTriggerRE.MatchString(text) {
		if err := d.msgr.Reply(ev.ReplyToken, []messaging_api.MessageInterface{
			lineutil.NewTextMessage("กำลังสร้างลิงก์แจ้งออกให้คุณ… กรุณารอสักครู่"),
		}); err != nil {
			d.log.WithError(err).Warn("Moveout trigger ack failed")
		}
		d.fwd.Forward(ctx, d.backends.Primary, map[string]any{"events": []any{ev.Raw}})
		return
	}

	// (B) Active move-out flow steps.
	if d.moveoutTextGate(ctx, ev, text) {
		return
	}

	// (C) Rent payment trigger.
	if rentTriggerRE.MatchString(text) {
		d.startRentFlow(ctx, g, ev)
		return
	}

	// (D) Amenity service menus.
	if msgs := d.catalog.AmenityMenu(text, ev.ChatID(), ev.UserID()); msgs != nil {
		d.replyAsync(g, ev, msgs)
		return
	}

	// (E) Quick keyword replies, answered locally.
	if msgs := d.catalog.QuickKeywordReply(text); msgs != nil {
		d.replyAsync(g, ev, msgs)
		return
	}

	// (F) Button-label text answers the same content as the tap.
	if act, ok := d.catalog.LabelAct(text); ok {
		switch {
		case catalog.IsRoomAct(act):
			d.replyAsync(g, ev, d.catalog.RoomReply(act))
		default:
			d.replyAsync(g, ev, d.catalog.FixReply(act))
		}
		return
	}

	// (G) Booking code.
	if bookingCodeRE.MatchString(text) {
		d.replyAsync(g, ev, []messaging_api.MessageInterface{
			lineutil.NewTextMessage("กำลังตรวจสอบรหัสจอง…"),
		})
		d.forwardEventAsync(ctx, g, d.backends.Primary, ev)
		return
	}

	// (H) Bare room number only matters inside an active flow.
	if roomLikeRE.MatchString(text) {
		if flow, ok := d.flows.Get(ctx, moveoutKey(ev)); ok && flow.Step != "" {
			if d.moveoutTextGate(ctx, ev, text) {
				return
			}
		}
	}

	// (I) Everything else belongs to the backend.
	d.forwardEventAsync(ctx, g, d.backends.Primary, ev)
}

// startRentFlow answers the rent trigger phrase: loading indicator,
// instructions with a cancel quick action, a fresh flow record, and a
// synthesized pay_rent postback so the backend initializes its side.
func (d *Dispatcher) startRentFlow(ctx context.Context, g *errgroup.Group, ev *event.Event) {
	d.spawn(g, func() {
		if err := d.msgr.StartLoading(ev.ChatID(), config.LoadingSecondsDefault); err != nil {
			d.log.WithError(err).Warn("Rent loading indicator failed")
		}
	})

	instructions := lineutil.NewTextMessage("เริ่มขั้นตอนชำระค่าเช่า…\nโปรดพิมพ์เบอร์ห้อง (เช่น A101)")
	instructions.QuickReply = lineutil.NewQuickReply([]lineutil.QuickReplyItem{
		{Action: lineutil.NewPostbackActionWithDisplayText("ยกเลิก", "ยกเลิก", "act=rent_cancel")},
	})
	d.replyAsync(g, ev, []messaging_api.MessageInterface{instructions})

	d.flows.Put(ctx, payrentKey(ev), flowstore.Record{Step: "await_slip", TS: d.now().UnixMilli()})

	synthesized := ev.SynthesizePostback("act=pay_rent")
	d.spawn(g, func() {
		d.fwd.Forward(ctx, d.backends.Primary, map[string]any{"events": []any{synthesized.Raw}})
	})
}

func (d *Dispatcher) dispatchImage(ctx context.Context, g *errgroup.Group, ev *event.Event) {
	d.replyAsync(g, ev, []messaging_api.MessageInterface{
		lineutil.NewTextMessage("รับไฟล์แล้ว กำลังตรวจสอบ…"),
	})

	key := payrentKey(ev)
	flow, ok := d.flows.Get(ctx, key)
	fresh := ok && flow.TS > 0 &&
		d.now().Sub(time.UnixMilli(flow.TS)) < config.RentFlowFreshness

	if fresh {
		// One-shot hand-off to the rent backend.
		d.fwd.Forward(ctx, d.backends.Rent, map[string]any{"events": []any{ev.Raw}})
		d.flows.Delete(ctx, key)
		return
	}

	d.forwardEventAsync(ctx, g, d.backends.Primary, ev)
}

// moveoutTextGate reports whether text was consumed as a step of an
// active move-out flow. The flow steps themselves live in the backend
// today; the gate defers by reporting not-handled.
func (d *Dispatcher) moveoutTextGate(ctx context.Context, ev *event.Event, text string) bool {
	return false
}

func (d *Dispatcher) forwardEventAsync(ctx context.Context, g *errgroup.Group, backend forwarder.Backend, ev *event.Event) {
	raw := ev.Raw
	d.spawn(g, func() {
		d.fwd.Forward(ctx, backend, map[string]any{"events": []any{raw}})
	})
}

func (d *Dispatcher) replyAsync(g *errgroup.Group, ev *event.Event, msgs []messaging_api.MessageInterface) {
	token := ev.ReplyToken
	d.spawn(g, func() {
		if err := d.msgr.Reply(token, msgs); err != nil {
			d.log.WithError(err).Warn("Reply failed")
		}
	})
}

func (d *Dispatcher) spawn(g *errgroup.Group, fn func()) {
	g.Go(func() error {
		fn()
		return nil
	})
}

func trimmedText(ev *event.Event) string {
	return strings.TrimSpace(ev.Text())
}

func moveoutKey(ev *event.Event) string { return ev.ConversationKey() + ":moveout_flow" }

func payrentKey(ev *event.Event) string { return ev.ConversationKey() + ":payrent_flow" }
