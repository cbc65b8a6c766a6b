// FILE: logward/src/internal/core/classify.go
package core

import "reflect"

// Classification predicates shared by the normalizer and the redaction
// engine. All of them are pure and never panic.

// IsRecord reports whether v is a plain data record: a map with string keys
// that is not error-like. Records found among log call arguments are merged
// into the entry's Data instead of being kept as positional arguments.
func IsRecord(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(error); ok {
		return false
	}
	if _, ok := v.(map[string]any); ok {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

// IsErrorLike reports whether v is an error value or a record carrying
// string "name" and "message" fields.
func IsErrorLike(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(error); ok {
		return true
	}
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, hasName := m["name"].(string)
	_, hasMessage := m["message"].(string)
	return hasName && hasMessage
}

// IsPrimitive reports whether v needs no further processing before
// serialization.
func IsPrimitive(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// MightHaveCircularRefs reports whether v can participate in a reference
// cycle and therefore needs identity tracking during traversal.
func MightHaveCircularRefs(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	default:
		return false
	}
}
