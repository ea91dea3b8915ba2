// Package params builds the string key/value pairs sent as query strings
// and form bodies. Values are stringified at assembly time so that bad
// input fails in the caller's frame, not at send time.
package params

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/aqbt/qbt/chrono"
)

// Dict is an ordered string/string mapping.
type Dict struct {
	keys   []string
	values map[string]string
}

func New() *Dict {
	return &Dict{values: make(map[string]string)}
}

func (d *Dict) set(key, value string) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Len reports the number of stored pairs.
func (d *Dict) Len() int {
	return len(d.keys)
}

// Get returns the stored value for key, if any.
func (d *Dict) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Values flattens into url.Values preserving single-valued keys.
func (d *Dict) Values() url.Values {
	out := make(url.Values, len(d.keys))
	for _, k := range d.keys {
		out.Set(k, d.values[k])
	}
	return out
}

// Encode renders the pairs in insertion order as a query/form string.
func (d *Dict) Encode() string {
	var b strings.Builder
	for i, k := range d.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(d.values[k]))
	}
	return b.String()
}

// Str stores a string value.
func (d *Dict) Str(key, value string) *Dict {
	d.set(key, value)
	return d
}

// OptionalStr stores value unless it is nil.
func (d *Dict) OptionalStr(key string, value *string) *Dict {
	if value != nil {
		d.set(key, *value)
	}
	return d
}

// Int stores an integer value.
func (d *Dict) Int(key string, value int64) *Dict {
	d.set(key, strconv.FormatInt(value, 10))
	return d
}

func (d *Dict) OptionalInt(key string, value *int64) *Dict {
	if value != nil {
		d.Int(key, *value)
	}
	return d
}

// Float stores a floating-point value.
func (d *Dict) Float(key string, value float64) *Dict {
	d.set(key, strconv.FormatFloat(value, 'f', -1, 64))
	return d
}

func (d *Dict) OptionalFloat(key string, value *float64) *Dict {
	if value != nil {
		d.Float(key, *value)
	}
	return d
}

// Bool stores the literal tokens "true" or "false".
func (d *Dict) Bool(key string, value bool) *Dict {
	if value {
		d.set(key, "true")
	} else {
		d.set(key, "false")
	}
	return d
}

func (d *Dict) OptionalBool(key string, value *bool) *Dict {
	if value != nil {
		d.Bool(key, *value)
	}
	return d
}

// Duration stores d truncated to a whole count of unit.
func (d *Dict) Duration(key string, value time.Duration, unit chrono.TimeUnit) *Dict {
	d.set(key, strconv.FormatInt(unit.Count(value), 10))
	return d
}

func (d *Dict) OptionalDuration(key string, value *time.Duration, unit chrono.TimeUnit) *Dict {
	if value != nil {
		d.Duration(key, *value, unit)
	}
	return d
}

// DurationCount stores a raw numeric count of unit. Non-finite counts are
// rejected.
func (d *Dict) DurationCount(key string, count float64, unit chrono.TimeUnit) error {
	dur, err := unit.Duration(count)
	if err != nil {
		return errors.Wrapf(err, "parameter %q", key)
	}
	d.Duration(key, dur, unit)
	return nil
}

// List stores items joined by sep. With nonempty set, an empty list is an
// error.
func (d *Dict) List(key string, items []string, sep string, nonempty bool) error {
	if nonempty && len(items) == 0 {
		return errors.Errorf("parameter %q must not be empty", key)
	}
	d.set(key, strings.Join(items, sep))
	return nil
}

// Path stores a filesystem path normalized to forward slashes.
func (d *Dict) Path(key, path string) *Dict {
	d.set(key, strings.ReplaceAll(path, `\`, "/"))
	return d
}

func (d *Dict) OptionalPath(key string, path *string) *Dict {
	if path != nil {
		d.Path(key, *path)
	}
	return d
}

func isHexLower(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ValidateHash checks a v1 (40 hex) or v2 (64 hex) info hash in lowercase
// hex form.
func ValidateHash(hash string) error {
	if (len(hash) != 40 && len(hash) != 64) || !isHexLower(hash) {
		return errors.Errorf("malformed info hash: %q", hash)
	}
	return nil
}

// NormalizeHash converts a binary info hash digest to lowercase hex.
func NormalizeHash(digest []byte) string {
	return fmt.Sprintf("%x", digest)
}

// WithHash builds a Dict holding a single validated info hash under key.
func WithHash(key, hash string) (*Dict, error) {
	if err := ValidateHash(hash); err != nil {
		return nil, err
	}
	d := New()
	d.set(key, hash)
	return d, nil
}

// WithHashes builds a Dict holding "|"-joined validated info hashes under
// key.
func WithHashes(key string, hashes []string) (*Dict, error) {
	for _, h := range hashes {
		if err := ValidateHash(h); err != nil {
			return nil, err
		}
	}
	d := New()
	d.set(key, strings.Join(hashes, "|"))
	return d, nil
}

// HashesAll marks an operation applying to every torrent.
const HashesAll = "all"

// WithHashesOrAll behaves like WithHashes but also accepts the single
// literal token "all".
func WithHashesOrAll(key string, hashes []string) (*Dict, error) {
	if len(hashes) == 1 && hashes[0] == HashesAll {
		d := New()
		d.set(key, HashesAll)
		return d, nil
	}
	return WithHashes(key, hashes)
}
