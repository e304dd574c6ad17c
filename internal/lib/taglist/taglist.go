// Package taglist turns the loosely typed tag inputs accepted by the movie
// endpoints (countries, languages, genres, ...) into clean string lists.
package taglist

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Placeholder is a value some clients send for empty form fields. It is never
// a real tag.
const Placeholder = "data"

// Parse accepts a native list, a JSON-encoded list or a comma separated
// string, in that order of precedence. The result is never nil.
func Parse(v any) []string {
	switch v := v.(type) {
	case nil:
		return []string{}
	case []string:
		return Clean(v)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, stringify(item))
		}
		return Clean(items)
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return []string{}
		}
		return Parse(decoded)
	case string:
		return parseString(v)
	default:
		return []string{}
	}
}

func parseString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	var decoded []any
	if err := json.Unmarshal([]byte(s), &decoded); err == nil {
		return Parse(decoded)
	}
	return Clean(strings.Split(s, ","))
}

func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		// {"name": "..."} objects, as used for production companies
		if name, ok := v["name"].(string); ok {
			return name
		}
		return ""
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Clean trims every item and drops blanks, placeholders and duplicates while
// keeping the original order.
func Clean(items []string) []string {
	cleaned := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || item == Placeholder {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		cleaned = append(cleaned, item)
	}
	return cleaned
}
