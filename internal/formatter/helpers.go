package formatter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Display bounds for previews. Tool inputs get a tighter bound than
// generic content dumps.
const (
	maxContentDisplayLength = 200
	maxInputPreviewLength   = 120
)

const truncationMarker = "...(truncated)"

// Truncate stringifies v and cuts it to at most max characters, appending
// a fixed marker when anything was removed. Nil input yields an empty
// string. Truncation is idempotent beyond the bound.
func Truncate(v any, max int) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	default:
		s = fmt.Sprintf("%v", t)
	}
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + truncationMarker
}

// FormatDuration renders a millisecond count: below 1000ms as
// milliseconds, from 1000ms up to (but excluding) 60000ms as seconds with
// one decimal place, and at or above 60000ms as minutes with one decimal
// place. Negative input collapses to "0ms".
func FormatDuration(ms float64) string {
	if ms < 0 {
		ms = 0
	}
	switch {
	case ms < 1000:
		return fmt.Sprintf("%dms", int64(ms))
	case ms < 60000:
		return fmt.Sprintf("%.1fs", ms/1000)
	default:
		return fmt.Sprintf("%.1fm", ms/60000)
	}
}

// FormatBytes renders a byte count using binary (1024-based) units with up
// to two decimal places. Zero or negative counts collapse to "0 B".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	units := []string{"KB", "MB", "GB", "TB"}
	value := float64(n)
	unit := ""
	for _, u := range units {
		value /= 1024
		unit = u
		if value < 1024 {
			break
		}
	}
	s := strconv.FormatFloat(value, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + " " + unit
}

// parseCost parses a cost value that arrives either as a JSON number or as
// a numeric string. Returns false for absent or malformed values.
func parseCost(raw json.RawMessage) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	if s == "" {
		return 0, false
	}
	cost, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return cost, true
}

// extractText flattens tool result content to plain text. Content is
// either a string or an array of content blocks with text fields; anything
// else yields an empty string.
func extractText(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case []any:
		var builder strings.Builder
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if text, ok := m["text"].(string); ok {
					builder.WriteString(text)
				}
			}
		}
		return builder.String()
	default:
		return ""
	}
}

// compactJSON serializes a tool input map to a single-line JSON string.
// Map key order from encoding/json is sorted, so output is deterministic.
func compactJSON(input map[string]any) string {
	if len(input) == 0 {
		return "{}"
	}
	data, err := json.Marshal(input)
	if err != nil {
		return fmt.Sprintf("%v", input)
	}
	return string(data)
}
