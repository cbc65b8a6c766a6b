// FILE: logward/src/internal/normalize/serialize.go
package normalize

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"logward/src/internal/core"
)

// Serialize converts an arbitrary runtime value into a JSON-representable
// one: primitives pass through, errors become name/message/cause maps,
// exotic types become descriptive markers, containers are cloned with cycle
// tracking. A panic anywhere inside becomes an inline error marker for the
// offending value only.
func (n *Normalizer) Serialize(v any) (result any) {
	defer func() {
		if r := recover(); r != nil {
			result = fmt.Sprintf("[Serialization Error: %v]", r)
		}
	}()
	seen := make(core.Visited)
	return n.serialize(v, n.opts.MaxDepth, seen)
}

func (n *Normalizer) serialize(v any, depth int, seen core.Visited) any {
	if v == nil {
		return nil
	}
	if core.IsPrimitive(v) {
		return v
	}
	if depth <= 0 {
		return core.MaxDepthMarker
	}

	// Known concrete types before generic reflection
	switch val := v.(type) {
	case error:
		return n.serializeError(val, n.opts.MaxCauseDepth)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Format(time.RFC3339Nano)
	case time.Duration:
		return val.String()
	case *regexp.Regexp:
		if val == nil {
			return nil
		}
		return val.String()
	case fmt.Stringer:
		return safeStringer(val)
	case complex64, complex128:
		return fmt.Sprint(val)
	case []byte:
		return string(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return fmt.Sprintf("[func %s]", rv.Type())
	case reflect.Chan:
		return fmt.Sprintf("[chan %s]", rv.Type().Elem())

	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		release, ok := seen.Enter(v)
		if !ok {
			return core.CircularRefMarker
		}
		defer release()
		return n.serialize(rv.Elem().Interface(), depth-1, seen)

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return nil
			}
			release, ok := seen.Enter(v)
			if !ok {
				return core.CircularRefMarker
			}
			defer release()
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = n.serializeElement(rv.Index(i).Interface(), depth-1, seen)
		}
		return out

	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Sprintf("[map %s len=%d]", rv.Type(), rv.Len())
		}
		release, ok := seen.Enter(v)
		if !ok {
			return core.CircularRefMarker
		}
		defer release()
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = n.serializeElement(iter.Value().Interface(), depth-1, seen)
		}
		return out

	case reflect.Struct:
		return n.serializeStruct(rv, depth, seen)

	default:
		return fmt.Sprint(v)
	}
}

// serializeElement isolates failures to a single container element.
func (n *Normalizer) serializeElement(v any, depth int, seen core.Visited) (result any) {
	defer func() {
		if r := recover(); r != nil {
			result = fmt.Sprintf("[Serialization Error: %v]", r)
		}
	}()
	return n.serialize(v, depth, seen)
}

// serializeStruct tags non-plain objects with their type and copies exported
// fields best effort.
func (n *Normalizer) serializeStruct(rv reflect.Value, depth int, seen core.Visited) any {
	t := rv.Type()
	out := make(map[string]any, t.NumField()+1)
	out["__type__"] = t.String()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		out[field.Name] = n.serializeElement(rv.Field(i).Interface(), depth-1, seen)
	}
	return out
}

// serializeError flattens an error into name/message with a bounded cause
// chain.
func (n *Normalizer) serializeError(err error, causeDepth int) map[string]any {
	out := map[string]any{
		"name":    errorName(err),
		"message": safeErrorMessage(err),
	}
	if causeDepth > 0 {
		if cause := errors.Unwrap(err); cause != nil {
			out["cause"] = n.serializeError(cause, causeDepth-1)
		}
	}
	return out
}

func errorName(err error) string {
	t := reflect.TypeOf(err)
	if t == nil {
		return "error"
	}
	name := strings.TrimPrefix(t.String(), "*")
	if name == "errors.errorString" || name == "fmt.wrapError" {
		return "error"
	}
	return name
}

func safeErrorMessage(err error) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("[error message unavailable: %v]", r)
		}
	}()
	return err.Error()
}

func safeStringer(s fmt.Stringer) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("[Serialization Error: %v]", r)
		}
	}()
	return s.String()
}
