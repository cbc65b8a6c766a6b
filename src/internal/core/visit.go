// FILE: logward/src/internal/core/visit.go
package core

import "reflect"

// Visited tracks object identities during one recursive traversal.
// Shared by the serializer and the redaction engine so cycle detection
// behaves identically in both.
type Visited map[uintptr]struct{}

// Identity returns a stable identity for cycle-capable values. The second
// result is false for values that cannot participate in cycles.
func Identity(v any) (uintptr, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	default:
		return 0, false
	}
}

// Enter records the identity of v. It returns false when v was already
// visited (a cycle) and a release function otherwise.
func (s Visited) Enter(v any) (func(), bool) {
	id, ok := Identity(v)
	if !ok {
		return func() {}, true
	}
	if _, seen := s[id]; seen {
		return nil, false
	}
	s[id] = struct{}{}
	return func() { delete(s, id) }, true
}
