// Package catalog holds the static reply content: room and repair
// detail lookups, keyword replies, and amenity service menus. Lookups
// are pure functions over immutable tables built once at startup.
package catalog

import (
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/mamamansion/line-edge-go/internal/lineutil"
	"github.com/mamamansion/line-edge-go/internal/postback"
)

// Options carries the content overrides the environment may provide.
type Options struct {
	HowtoImageURL1 string
	HowtoImageURL2 string
}

// Catalog answers content lookups. Zero value works with default
// content; New applies overrides.
type Catalog struct {
	howtoImages [2]string
}

// New builds a Catalog with the given overrides applied over the
// default content.
func New(opts Options) *Catalog {
	c := &Catalog{howtoImages: defaultBookingImageURLs}
	if url := strings.TrimSpace(opts.HowtoImageURL1); url != "" {
		c.howtoImages[0] = url
	}
	if url := strings.TrimSpace(opts.HowtoImageURL2); url != "" {
		c.howtoImages[1] = url
	}
	return c
}

// IsRoomAct reports whether act belongs to the room-detail family.
func IsRoomAct(act string) bool { return strings.HasPrefix(act, "ROOM_") }

// IsFixAct reports whether act belongs to the repair-detail family.
func IsFixAct(act string) bool { return strings.HasPrefix(act, "FIX_") }

// IsResAct reports whether act belongs to the reservation family.
func IsResAct(act string) bool { return strings.HasPrefix(act, "RES_") }

// RoomReply resolves a ROOM_* action code to its reply messages.
// ROOM_RENT_IMG carries the fixed price sheet images after its text;
// unknown codes get the generic menu hint, never an error.
func (c *Catalog) RoomReply(act string) []messaging_api.MessageInterface {
	text, ok := roomDetails[act]
	if !ok {
		text = roomFallback
	}

	out := []messaging_api.MessageInterface{lineutil.NewTextMessage(text)}
	if act == "ROOM_RENT_IMG" {
		for _, url := range rentPriceImageURLs {
			out = append(out, lineutil.NewImageMessage(url, url))
		}
	}
	return out
}

// FixReply resolves a FIX_* action code to its reply message.
func (c *Catalog) FixReply(act string) []messaging_api.MessageInterface {
	text, ok := fixDetails[act]
	if !ok {
		text = fixFallback
	}
	return []messaging_api.MessageInterface{lineutil.NewTextMessage(text)}
}

// ResReply resolves a RES_* action code to its reply message.
func (c *Catalog) ResReply(act string) []messaging_api.MessageInterface {
	text, ok := resDetails[act]
	if !ok {
		text = resFallback
	}
	return []messaging_api.MessageInterface{lineutil.NewTextMessage(text)}
}

// LabelAct maps a button-label text to its action code, checking room
// labels before repair labels.
func (c *Catalog) LabelAct(text string) (string, bool) {
	if act, ok := roomLabelToAct[text]; ok {
		return act, true
	}
	if act, ok := fixLabelToAct[text]; ok {
		return act, true
	}
	return "", false
}

// QuickKeywordReply matches free text against the known phrase sets and
// returns the canned reply, or nil when nothing matches. Short phrases
// match exactly (case-insensitive); the booking intent matches by
// substring so it fires inside longer sentences.
func (c *Catalog) QuickKeywordReply(text string) []messaging_api.MessageInterface {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return nil
	}
	lower := strings.ToLower(normalized)

	if containsPhrase(contactPhrases, lower) {
		return []messaging_api.MessageInterface{lineutil.NewTextMessage(contactMenuText)}
	}

	if strings.Contains(normalized, "วิธีจอง") {
		out := []messaging_api.MessageInterface{lineutil.NewTextMessage(bookingStepsText)}
		for _, url := range c.howtoImages {
			if url == "" {
				continue
			}
			out = append(out, lineutil.NewImageMessage(url, url))
		}
		return out
	}

	if containsPhrase(maidPhrases, lower) {
		return []messaging_api.MessageInterface{lineutil.NewTextMessage(maidContactText)}
	}

	return nil
}

// AmenityMenu matches amenity service keywords and builds the matching
// buttons template. The postback data embeds the authoritative chat and
// user ids so the request handler never has to trust client-echoed
// copies.
func (c *Catalog) AmenityMenu(text, chatID, userID string) []messaging_api.MessageInterface {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return nil
	}

	switch {
	case containsPhrase(fridgeMenuPhrases, normalized):
		return c.amenityTemplate("เช่าตู้เย็น", fridgeMenuText, "ขอเช่าตู้เย็น", "fridge_req", chatID, userID)
	case containsPhrase(parkingMenuPhrases, normalized):
		return c.amenityTemplate("จองที่จอดรถ", parkingMenuText, "จองที่จอดรถ", "parking_req", chatID, userID)
	}
	return nil
}

func (c *Catalog) amenityTemplate(title, text, label, act, chatID, userID string) []messaging_api.MessageInterface {
	data := postback.Encode(map[string]string{
		"act":        act,
		"chatId":     chatID,
		"lineUserId": userID,
	})
	actions := []lineutil.Action{
		lineutil.NewPostbackActionWithDisplayText(label, label, data),
		lineutil.NewMessageAction("ยกเลิก", "ยกเลิก"),
	}
	return []messaging_api.MessageInterface{
		lineutil.NewButtonsTemplate(title, title, text, actions),
	}
}

// FridgeAck is the local reply for an accepted fridge rental request.
func (c *Catalog) FridgeAck() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{lineutil.NewTextMessage(fridgeAckText)}
}

// ParkingAck is the local reply for an accepted parking request.
func (c *Catalog) ParkingAck() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{lineutil.NewTextMessage(parkingAckText)}
}

func containsPhrase(phrases []string, s string) bool {
	for _, p := range phrases {
		if s == p {
			return true
		}
	}
	return false
}
