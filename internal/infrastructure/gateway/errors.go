package gateway

import (
	"encoding/json"
	"strings"
)

const maxUnwrapDepth = 5

// ErrorMessage extracts the innermost human-readable message from a gateway
// error body. Bodies may be plain text, {"error":"..."}, {"message":...}, or
// a JSON document encoded as a string inside the error field, nested several
// layers deep.
func ErrorMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return text
	}
	return unwrap(v, 0)
}

func unwrap(v any, depth int) string {
	if depth > maxUnwrapDepth {
		return ""
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") || strings.HasPrefix(s, `"`) {
			var inner any
			if err := json.Unmarshal([]byte(s), &inner); err == nil {
				if msg := unwrap(inner, depth+1); msg != "" {
					return msg
				}
			}
		}
		return s
	case map[string]any:
		for _, key := range []string{"error", "message", "msg", "error_description"} {
			if inner, ok := t[key]; ok {
				if msg := unwrap(inner, depth+1); msg != "" {
					return msg
				}
			}
		}
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if msg := unwrap(item, depth+1); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// embeddedError returns the message of a 2xx body that still carries an
// "error" field.
func embeddedError(body []byte) string {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	raw, ok := env["error"]
	if !ok || string(raw) == "null" || string(raw) == `""` || string(raw) == "false" {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return unwrap(v, 0)
}
