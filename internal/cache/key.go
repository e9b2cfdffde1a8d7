package cache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key builds a deterministic cache key from prefix and params.  Params are
// normalized before serialization: strings are trimmed and lower-cased,
// and null, empty and "any" values are dropped.  Objects serialize with
// sorted keys, so two semantically equal filters produce the same key
// regardless of field order.
func Key(prefix string, params any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", prefix, params)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return prefix + ":" + string(raw)
	}
	norm := normalize(generic)
	if s, ok := norm.(string); ok {
		return prefix + ":" + s
	}
	out, err := json.Marshal(norm)
	if err != nil {
		return prefix + ":" + string(raw)
	}
	return prefix + ":" + string(out)
}

func normalize(v any) any {
	switch t := v.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			n := normalize(val)
			if Blank(n) {
				continue
			}
			out[k] = n
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			out = append(out, normalize(val))
		}
		return out
	default:
		return v
	}
}

// Blank reports whether v carries no filtering information: nil, an empty
// or "any" string, an empty list or an empty object.
func Blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(t)
		return s == "" || strings.EqualFold(s, "any")
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
