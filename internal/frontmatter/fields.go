package frontmatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// String returns fields[key] formatted as a string, or "" when absent.
func String(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Bool accepts true/false values and their string forms.
func Bool(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

// Int accepts any YAML/TOML/JSON number or numeric string. ok is false otherwise.
func Int(fields map[string]any, key string) (int, bool) {
	switch v := fields[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// Float is Int for fractional values.
func Float(fields map[string]any, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Map returns a nested mapping, or nil.
func Map(fields map[string]any, key string) map[string]any {
	m, _ := fields[key].(map[string]any)
	return m
}

// Strings accepts a list or a single string.
func Strings(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time parses a timestamp value. ok is false when absent or unparseable.
func Time(fields map[string]any, key string) (time.Time, bool) {
	switch v := fields[key].(type) {
	case time.Time:
		return v, true
	case string:
		return ParseTime(v)
	}
	return time.Time{}, false
}

// ParseTime accepts RFC 3339 and plain dates.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
