// Package event models inbound LINE webhook events.
//
// Events keep their raw JSON alongside the decoded fields because
// forwarding to the backends relays the original event object verbatim;
// re-marshaling a partially decoded struct would drop fields the
// backends rely on.
package event

import (
	"encoding/json"
)

// Source identifies where an event came from. Exactly one of the id
// fields is set depending on the chat context.
type Source struct {
	Type    string `json:"type,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// Message is the payload of a message event.
type Message struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Postback is the payload of a postback event.
type Postback struct {
	Data string `json:"data"`
}

// Event is one inbound webhook notification.
type Event struct {
	Type       string    `json:"type"`
	ReplyToken string    `json:"replyToken,omitempty"`
	Source     Source    `json:"source"`
	Message    *Message  `json:"message,omitempty"`
	Postback   *Postback `json:"postback,omitempty"`

	// Raw is the original event JSON as received, used when forwarding.
	Raw json.RawMessage `json:"-"`
}

type webhookBody struct {
	Events []json.RawMessage `json:"events"`
}

// ParseBody decodes a webhook request body into events.
// Malformed bodies and malformed individual events degrade to an empty
// slice / are skipped rather than failing the batch.
func ParseBody(body []byte) []Event {
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil
	}

	events := make([]Event, 0, len(wb.Events))
	for _, raw := range wb.Events {
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		ev.Raw = raw
		events = append(events, ev)
	}
	return events
}

// ChatID returns the conversation identifier: the first present of
// group, room, or user id. Empty when the source is unknown.
func (e *Event) ChatID() string {
	switch {
	case e.Source.GroupID != "":
		return e.Source.GroupID
	case e.Source.RoomID != "":
		return e.Source.RoomID
	default:
		return e.Source.UserID
	}
}

// UserID returns the sending user's id, empty if absent.
func (e *Event) UserID() string {
	return e.Source.UserID
}

// ConversationKey derives the flow-store partition key
// "<chatId>:<userId>". Missing ids default to "unknown" and "anon" so
// the key is always non-empty and stable within one chat context.
func (e *Event) ConversationKey() string {
	chat := e.ChatID()
	if chat == "" {
		chat = "unknown"
	}
	uid := e.Source.UserID
	if uid == "" {
		uid = "anon"
	}
	return chat + ":" + uid
}

// MessageType returns the message payload type, empty for non-message events.
func (e *Event) MessageType() string {
	if e.Message == nil {
		return ""
	}
	return e.Message.Type
}

// Text returns the text of a text message event, empty otherwise.
func (e *Event) Text() string {
	if e.Message == nil {
		return ""
	}
	return e.Message.Text
}

// PostbackData returns the raw postback data string, empty for
// non-postback events.
func (e *Event) PostbackData() string {
	if e.Postback == nil {
		return ""
	}
	return e.Postback.Data
}

// SynthesizePostback returns a copy of e rewritten as a postback event
// carrying data, preserving all other raw fields. Used when a trigger
// phrase must initialize backend-side flow state through the postback
// path.
func (e *Event) SynthesizePostback(data string) Event {
	out := *e
	out.Type = "postback"
	out.Postback = &Postback{Data: data}

	var m map[string]any
	if err := json.Unmarshal(e.Raw, &m); err != nil || m == nil {
		m = map[string]any{
			"replyToken": e.ReplyToken,
			"source":     e.Source,
		}
	}
	m["type"] = "postback"
	m["postback"] = map[string]any{"data": data}
	delete(m, "message")

	if raw, err := json.Marshal(m); err == nil {
		out.Raw = raw
	}
	return out
}
