package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is a flat attribute bag for any backend entity. Fields the client
// does not understand are round-tripped untouched.
type Record map[string]any

// NullName is the placeholder the backend stores for an unset provider or
// project name.
const NullName = "null"

// String returns the field rendered as text; missing and nil fields are "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Int returns the field as an integer, accepting numeric and string values.
func (r Record) Int(key string) (int, bool) {
	switch t := r[key].(type) {
	case float64:
		return int(t), t == float64(int(t))
	case int:
		return t, true
	case json.Number:
		n, err := strconv.Atoi(t.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsNullName reports whether the record's key holds the backend null placeholder
// or nothing at all.
func (r Record) IsNullName(key string) bool {
	s := r.String(key)
	return s == "" || s == NullName
}
