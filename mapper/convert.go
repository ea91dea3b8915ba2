package mapper

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/aqbt/qbt/chrono"
)

// The converters below are pure functions over raw JSON scalars. They are
// registered per field via Convert.

// Timestamp interprets a number as a Unix timestamp localized to the
// context timezone. Values listed in absent are sentinels the API uses
// for "no such time" and mark the field absent instead.
func Timestamp(absent ...int64) ConvertFunc {
	sentinels := make(map[int64]struct{}, len(absent))
	for _, v := range absent {
		sentinels[v] = struct{}{}
	}
	return func(value any, ctx *Context) (any, error) {
		n, ok := toInt64(value)
		if !ok {
			return nil, errors.Errorf("not a timestamp: %v", value)
		}
		if _, skip := sentinels[n]; skip {
			return nil, nil
		}
		return time.Unix(n, 0).In(ctx.location()), nil
	}
}

// Duration interprets a number as a count of unit. Keys of sentinels map
// special negative codes to symbolic durations instead.
func Duration(unit chrono.TimeUnit, sentinels map[int64]time.Duration) ConvertFunc {
	return func(value any, ctx *Context) (any, error) {
		n, ok := toInt64(value)
		if !ok {
			return nil, errors.Errorf("not a duration: %v", value)
		}
		if mapped, ok := sentinels[n]; ok {
			return mapped, nil
		}
		return time.Duration(n) * time.Duration(unit), nil
	}
}

// Enum matches a raw string against the members of a closed string
// enumeration.
func Enum[E ~string](name string, members ...E) ConvertFunc {
	set := make(map[string]E, len(members))
	for _, m := range members {
		set[string(m)] = m
	}
	return func(value any, ctx *Context) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, errors.Errorf("%v is not a member of %s", value, name)
		}
		m, ok := set[s]
		if !ok {
			return nil, errors.Errorf("%q is not a member of %s", s, name)
		}
		return m, nil
	}
}

// IntEnum matches a raw number against the members of a closed integer
// enumeration.
func IntEnum[E ~int](name string, members ...E) ConvertFunc {
	set := make(map[int64]E, len(members))
	for _, m := range members {
		set[int64(m)] = m
	}
	return func(value any, ctx *Context) (any, error) {
		n, ok := toInt64(value)
		if !ok {
			return nil, errors.Errorf("%v is not a member of %s", value, name)
		}
		m, ok := set[n]
		if !ok {
			return nil, errors.Errorf("%d is not a member of %s", n, name)
		}
		return m, nil
	}
}

// StringList splits a delimited string on sep, discarding empty segments.
func StringList(sep string) ConvertFunc {
	return List(sep, nil)
}

// List splits a delimited string on sep, discarding empty segments and
// applying cast to each remaining item.
func List(sep string, cast func(item string) (any, error)) ConvertFunc {
	return func(value any, ctx *Context) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, errors.Errorf("not a string: %v", value)
		}
		var out []any
		for _, part := range strings.Split(s, sep) {
			if part == "" {
				continue
			}
			item := any(part)
			if cast != nil {
				var err error
				item, err = cast(part)
				if err != nil {
					return nil, err
				}
			}
			out = append(out, item)
		}
		if out == nil {
			out = []any{}
		}
		return out, nil
	}
}

// ObjectConv maps a nested JSON object into a mapped *T.
func ObjectConv[T any]() ConvertFunc {
	return func(value any, ctx *Context) (any, error) {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, errors.Errorf("not an object: %v", value)
		}
		return Create[T](m, ctx)
	}
}

// ObjectListConv maps a JSON array of objects into []*T.
func ObjectListConv[T any]() ConvertFunc {
	return func(value any, ctx *Context) (any, error) {
		items, ok := value.([]any)
		if !ok {
			return nil, errors.Errorf("not a list: %v", value)
		}
		return CreateList[T](items, ctx)
	}
}

// ObjectMapConv maps a JSON object of objects into map[string]*T, as used
// by differenced payloads keyed by info hash.
func ObjectMapConv[T any]() ConvertFunc {
	return func(value any, ctx *Context) (any, error) {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, errors.Errorf("not an object: %v", value)
		}
		return CreateMap[T](m, ctx)
	}
}

// RFC2822Time parses the article date format used by RSS feeds.
func RFC2822Time() ConvertFunc {
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822}
	return func(value any, ctx *Context) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, errors.Errorf("not a date string: %v", value)
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.In(ctx.location()), nil
			}
		}
		return nil, errors.Errorf("malformed date: %q", s)
	}
}
