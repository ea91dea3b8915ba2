// Package mapper constructs typed result objects from the raw JSON
// dictionaries returned by the WebAPI.
//
// Each result type declares its wire fields with `json` struct tags and
// embeds Object. Converters and defaults are registered once per type,
// usually from an init function:
//
//	mapper.Register[TorrentInfo](
//		mapper.Convert("added_on", mapper.Timestamp(-1)),
//		mapper.Default("tags", ""),
//	)
//
// Construction is a single pass over the payload: known keys are converted
// and assigned, unknown identifier-shaped keys are kept in an open extras
// map, and schema defaults fill whatever the payload omitted. Keys that are
// not valid identifiers, or that start with an underscore, fail the whole
// construction. The upstream API evolves faster than any client, so extra
// keys are never an error.
package mapper

import (
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/pkg/errors"
)

// Context carries ambient settings converters may consult.
type Context struct {
	// Location localizes converted timestamps. Defaults to UTC.
	Location *time.Location
}

func (c *Context) location() *time.Location {
	if c == nil || c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// ConvertFunc transforms a raw JSON value into the value assigned to a
// field. Returning a nil value marks the field as absent.
type ConvertFunc func(value any, ctx *Context) (any, error)

// Error reports a failed object construction, naming the offending field
// and raw value.
type Error struct {
	Type  string
	Field string
	Value any
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return errors.Errorf("mapping %s: field %q: value %v: %v", e.Type, e.Field, e.Value, e.Err).Error()
	}
	return errors.Errorf("mapping %s: field %q: value %v", e.Type, e.Field, e.Value).Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	errUnexpectedKey = errors.New("key is not a valid field name")
	errNoDefault     = errors.New("a field cannot have both a default and a default factory")
)

// FieldSpec attaches a converter or a default to a named wire field at
// registration time.
type FieldSpec struct {
	name    string
	convert ConvertFunc
	def     any
	defFunc func() any
	hasDef  bool
}

// Convert registers fn as the converter for the named field.
func Convert(name string, fn ConvertFunc) FieldSpec {
	return FieldSpec{name: name, convert: fn}
}

// Default registers a value filled in when the payload omits the field.
func Default(name string, value any) FieldSpec {
	return FieldSpec{name: name, def: value, hasDef: true}
}

// DefaultFunc registers a factory invoked to fill the field when the
// payload omits it. Use it for mutable defaults such as slices and maps.
func DefaultFunc(name string, fn func() any) FieldSpec {
	return FieldSpec{name: name, defFunc: fn}
}

type field struct {
	wire    string
	index   []int
	typ     reflect.Type
	convert ConvertFunc
	def     any
	defFunc func() any
	hasDef  bool
}

type schema struct {
	name        string
	typ         reflect.Type
	fields      map[string]*field
	ordered     []*field
	defaults    []*field
	objectIndex []int
}

func (s *schema) header(rv reflect.Value) *Object {
	if s.objectIndex == nil {
		return nil
	}
	if rv.CanAddr() {
		return rv.FieldByIndex(s.objectIndex).Addr().Interface().(*Object)
	}
	o := rv.FieldByIndex(s.objectIndex).Interface().(Object)
	return &o
}

var (
	specsMu sync.Mutex
	specs   = map[reflect.Type][]FieldSpec{}
	schemas sync.Map // reflect.Type -> *schema
)

// Register records converters and defaults for T's wire fields. It must
// run before the first construction of T, typically from init. Registering
// a spec for a field T does not declare, or both a default and a factory
// for one field, panics: these are programming errors.
func Register[T any](fs ...FieldSpec) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		panic(errors.Errorf("mapper: %s is not a struct", typ))
	}
	if _, built := schemas.Load(typ); built {
		panic(errors.Errorf("mapper: %s registered after first use", typ))
	}
	specsMu.Lock()
	specs[typ] = append(specs[typ], fs...)
	specsMu.Unlock()
}

func schemaFor(typ reflect.Type) (*schema, error) {
	if cached, ok := schemas.Load(typ); ok {
		return cached.(*schema), nil
	}

	s := &schema{
		name:   typ.Name(),
		typ:    typ,
		fields: map[string]*field{},
	}

	objectType := reflect.TypeOf((*Object)(nil)).Elem()
	var walk func(t reflect.Type, prefix []int) error
	walk = func(t reflect.Type, prefix []int) error {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			index := append(append([]int(nil), prefix...), i)
			if sf.Anonymous {
				if sf.Type == objectType {
					if s.objectIndex == nil {
						s.objectIndex = index
					}
					continue
				}
				// promote fields of embedded structs
				if sf.Type.Kind() == reflect.Struct && sf.Tag.Get("json") == "" {
					if err := walk(sf.Type, index); err != nil {
						return err
					}
					continue
				}
			}
			if !sf.IsExported() {
				continue
			}
			tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if tag == "" || tag == "-" {
				continue
			}
			if _, dup := s.fields[tag]; dup {
				return errors.Errorf("mapper: %s declares field %q twice", typ, tag)
			}
			f := &field{wire: tag, index: index, typ: sf.Type}
			s.fields[tag] = f
			s.ordered = append(s.ordered, f)
		}
		return nil
	}
	if err := walk(typ, nil); err != nil {
		return nil, err
	}

	specsMu.Lock()
	fs := specs[typ]
	specsMu.Unlock()
	for _, spec := range fs {
		f, ok := s.fields[spec.name]
		if !ok {
			return nil, errors.Errorf("mapper: %s has no field tagged %q", typ, spec.name)
		}
		if spec.convert != nil {
			f.convert = spec.convert
		}
		if spec.hasDef || spec.defFunc != nil {
			if f.hasDef || f.defFunc != nil {
				return nil, errors.Wrapf(errNoDefault, "mapper: %s field %q", typ, spec.name)
			}
			f.def = spec.def
			f.hasDef = spec.hasDef
			f.defFunc = spec.defFunc
		}
	}
	for _, f := range s.ordered {
		if f.hasDef || f.defFunc != nil {
			s.defaults = append(s.defaults, f)
		}
	}

	actual, _ := schemas.LoadOrStore(typ, s)
	return actual.(*schema), nil
}

// Create constructs a T from a raw JSON dictionary.
func Create[T any](raw map[string]any, ctx *Context) (*T, error) {
	out := new(T)
	rv := reflect.ValueOf(out).Elem()
	if err := create(rv, raw, ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateList constructs a slice of T from a JSON array of dictionaries.
func CreateList[T any](raw []any, ctx *Context) ([]*T, error) {
	out := make([]*T, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &Error{
				Type:  reflect.TypeOf((*T)(nil)).Elem().Name(),
				Value: item,
				Err:   errors.New("list item is not an object"),
			}
		}
		v, err := Create[T](m, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CreateMap constructs a map of T keyed by the input keys, as used by the
// differenced sync payloads.
func CreateMap[T any](raw map[string]any, ctx *Context) (map[string]*T, error) {
	out := make(map[string]*T, len(raw))
	for key, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &Error{
				Type:  reflect.TypeOf((*T)(nil)).Elem().Name(),
				Field: key,
				Value: item,
				Err:   errors.New("entry is not an object"),
			}
		}
		v, err := Create[T](m, ctx)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func create(rv reflect.Value, raw map[string]any, ctx *Context) error {
	s, err := schemaFor(rv.Type())
	if err != nil {
		return err
	}

	extras := map[string]any{}
	present := map[string]struct{}{}

	for key, value := range raw {
		f, ok := s.fields[key]
		if !ok {
			if strings.HasPrefix(key, "_") || !isIdentifier(key) {
				return &Error{Type: s.name, Field: key, Value: value, Err: errUnexpectedKey}
			}
			extras[key] = value
			continue
		}

		v := value
		if f.convert != nil {
			v, err = f.convert(value, ctx)
			if err != nil {
				return &Error{Type: s.name, Field: key, Value: value, Err: err}
			}
			if v == nil {
				continue
			}
		}
		if err := assign(rv.FieldByIndex(f.index), v); err != nil {
			return &Error{Type: s.name, Field: key, Value: value, Err: err}
		}
		present[key] = struct{}{}
	}

	for _, f := range s.defaults {
		if _, ok := present[f.wire]; ok {
			continue
		}
		v := f.def
		if !f.hasDef {
			v = f.defFunc()
		}
		if err := assign(rv.FieldByIndex(f.index), v); err != nil {
			return &Error{Type: s.name, Field: f.wire, Value: v, Err: err}
		}
		present[f.wire] = struct{}{}
	}

	if s.objectIndex != nil {
		s.header(rv).attach(raw, extras, present)
	}
	return nil
}

// assign stores a decoded JSON value into a struct field, converting
// between the narrow set of shapes encoding/json produces and the field's
// declared type.
func assign(fv reflect.Value, value any) error {
	if value == nil {
		return nil
	}
	vv := reflect.ValueOf(value)
	if vv.Type().AssignableTo(fv.Type()) {
		fv.Set(vv)
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			fv.SetString(s)
			return nil
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			fv.SetBool(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, ok := toInt64(value); ok {
			fv.SetInt(n)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, ok := toInt64(value); ok && n >= 0 {
			fv.SetUint(uint64(n))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := toFloat64(value); ok {
			fv.SetFloat(f)
			return nil
		}
	case reflect.Pointer:
		p := reflect.New(fv.Type().Elem())
		if err := assign(p.Elem(), value); err != nil {
			return err
		}
		fv.Set(p)
		return nil
	case reflect.Slice:
		if items, ok := value.([]any); ok {
			out := reflect.MakeSlice(fv.Type(), len(items), len(items))
			for i, item := range items {
				if err := assign(out.Index(i), item); err != nil {
					return err
				}
			}
			fv.Set(out)
			return nil
		}
	case reflect.Map:
		if m, ok := value.(map[string]any); ok && fv.Type().Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(fv.Type(), len(m))
			for k, item := range m {
				ev := reflect.New(fv.Type().Elem()).Elem()
				if err := assign(ev, item); err != nil {
					return err
				}
				out.SetMapIndex(reflect.ValueOf(k).Convert(fv.Type().Key()), ev)
			}
			fv.Set(out)
			return nil
		}
	}

	if vv.Kind() == reflect.String && fv.Kind() == reflect.String {
		// named string types
		fv.SetString(vv.String())
		return nil
	}
	return errors.Errorf("cannot store %T into %s", value, fv.Type())
}

func toInt64(value any) (int64, bool) {
	switch n := value.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toFloat64(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
