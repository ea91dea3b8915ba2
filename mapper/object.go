package mapper

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Object is the header embedded by every mapped result type. It keeps the
// raw response payload, the extra keys the schema did not know about, and
// the set of fields that were actually present in the payload. Differenced
// responses omit unchanged fields, so presence is a first-class state.
type Object struct {
	raw     map[string]any
	extra   map[string]any
	present map[string]struct{}
}

// Raw returns the payload the object was constructed from.
func (o *Object) Raw() map[string]any {
	return o.raw
}

// Extra returns keys accepted from the payload that the schema does not
// declare.
func (o *Object) Extra() map[string]any {
	return o.extra
}

// Has reports whether the named wire field was present in the payload or
// filled from a default.
func (o *Object) Has(name string) bool {
	_, ok := o.present[name]
	return ok
}

func (o *Object) attach(raw, extra map[string]any, present map[string]struct{}) {
	o.raw = raw
	o.extra = extra
	o.present = present
}

// Equal compares two mapped objects of the same type field by field. A
// field missing from both sides compares equal; missing on one side only
// does not. Inputs may be pointers to struct.
func Equal(a, b any) bool {
	ra, ok1 := derefStruct(a)
	rb, ok2 := derefStruct(b)
	if !ok1 || !ok2 || ra.Type() != rb.Type() {
		return false
	}

	s, err := schemaFor(ra.Type())
	if err != nil {
		return false
	}

	oa := s.header(ra)
	ob := s.header(rb)
	for _, f := range s.ordered {
		pa := oa == nil || oa.Has(f.wire)
		pb := ob == nil || ob.Has(f.wire)
		if pa != pb {
			return false
		}
		if pa && !reflect.DeepEqual(ra.FieldByIndex(f.index).Interface(), rb.FieldByIndex(f.index).Interface()) {
			return false
		}
	}
	if oa != nil && ob != nil && !reflect.DeepEqual(oa.extra, ob.extra) {
		return false
	}
	return true
}

// Format renders a mapped object listing only the fields that are present,
// for diagnostics.
func Format(v any) string {
	rv, ok := derefStruct(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}

	s, err := schemaFor(rv.Type())
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	var parts []string
	o := s.header(rv)
	for _, f := range s.ordered {
		if o != nil && !o.Has(f.wire) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", f.wire, rv.FieldByIndex(f.index).Interface()))
	}
	if o != nil && len(o.extra) > 0 {
		keys := make([]string, 0, len(o.extra))
		for k := range o.extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, o.extra[k]))
		}
	}
	return rv.Type().Name() + "{" + strings.Join(parts, ", ") + "}"
}

func derefStruct(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return rv, true
}
