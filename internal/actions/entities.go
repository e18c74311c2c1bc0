package actions

import (
	"fmt"
	"strconv"
	"strings"
)

// Entities is the untyped parameter bag attached to a command. Values
// come straight out of JSON decoding, so numbers arrive as float64 and
// everything else as strings or nested maps.
type Entities map[string]any

// String returns the entity under key coerced to a trimmed string.
// Numeric values are rendered without a trailing ".0".
func (e Entities) String(key string) string {
	v, ok := e[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// Has reports whether the entity is present and non-empty.
func (e Entities) Has(key string) bool {
	return e.String(key) != ""
}

// First returns the first non-empty entity among keys. Command JSON
// from the model is not perfectly stable about key names, so most
// handlers accept a couple of spellings.
func (e Entities) First(keys ...string) string {
	for _, k := range keys {
		if s := e.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Int returns the entity under key as an int, or fallback when the
// entity is absent or not numeric.
func (e Entities) Int(key string, fallback int) int {
	v, ok := e[key]
	if !ok {
		return fallback
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return fallback
}

// Bool returns the entity under key as a bool, or fallback.
func (e Entities) Bool(key string, fallback bool) bool {
	v, ok := e[key]
	if !ok {
		return fallback
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "oui", "yes", "1":
			return true
		case "false", "non", "no", "0":
			return false
		}
	}
	return fallback
}
