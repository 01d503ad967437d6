// Package postback decodes the opaque data string carried by LINE
// postback actions.
//
// Two producer formats exist side by side: compact percent-encoded
// "key=value&key=value" strings built by the edge itself, and embedded
// JSON objects emitted by rich-menu tooling. Decode accepts both and
// normalizes to a field map.
package postback

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Payload is the normalized field map decoded from a postback data string.
// Well-formed payloads carry an "act" field. In key=value mode a repeated
// key accumulates into a []string in first-seen order.
type Payload map[string]any

// Decode parses raw postback data into a Payload.
//
// A trimmed string starting with '{' is first tried as JSON; a non-array
// object is returned as-is. Anything else (including JSON parse
// failures) is decoded as &-separated percent-encoded pairs. Empty input
// yields an empty map, never nil.
func Decode(raw string) Payload {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Payload{}
	}

	if strings.HasPrefix(trimmed, "{") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			if obj, ok := v.(map[string]any); ok {
				return Payload(obj)
			}
		}
	}

	out := Payload{}
	for _, part := range strings.Split(trimmed, "&") {
		if part == "" {
			continue
		}
		rawKey, rawVal, _ := strings.Cut(part, "=")
		key := strings.TrimSpace(unescape(rawKey))
		if key == "" {
			continue
		}
		val := strings.TrimSpace(unescape(rawVal))

		if prev, exists := out[key]; exists {
			switch p := prev.(type) {
			case []string:
				out[key] = append(p, val)
			case string:
				out[key] = []string{p, val}
			default:
				out[key] = val
			}
		} else {
			out[key] = val
		}
	}
	return out
}

// Encode builds a compact key=value data string from fields.
// Keys are emitted in sorted order (url.Values semantics), values
// percent-encoded. The inverse of Decode for single-valued maps.
func Encode(fields map[string]string) string {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	return values.Encode()
}

// unescape percent-decodes s, falling back to the raw string when the
// encoding is malformed. Malformed input degrades, it never errors out.
func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// Get returns the string value for key. A repeated key returns its first
// value; non-string JSON values return the empty string.
func (p Payload) Get(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// Act returns the action code, empty when the payload is malformed.
func (p Payload) Act() string {
	return p.Get("act")
}

// Scope returns the flow scope marker, if any.
func (p Payload) Scope() string {
	return p.Get("scope")
}
