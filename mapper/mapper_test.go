package mapper

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqbt/qbt/chrono"
)

type sample struct {
	Object

	Name  string        `json:"name"`
	Size  int64         `json:"size"`
	Ratio float64       `json:"ratio"`
	Seen  time.Time     `json:"seen"`
	Wait  time.Duration `json:"wait"`
	Tags  []string      `json:"tags"`
}

type withDefaults struct {
	Object

	Full  bool     `json:"full"`
	Items []string `json:"items"`
}

type plain struct {
	Value int `json:"value"`
}

type failing struct {
	Object

	Broken int `json:"broken"`
}

func init() {
	Register[sample](
		Convert("seen", Timestamp(-1, 0xFFFFFFFF)),
		Convert("wait", Duration(chrono.Seconds, nil)),
		Convert("tags", StringList(", ")),
	)
	Register[withDefaults](
		Default("full", false),
		DefaultFunc("items", func() any { return []string{} }),
	)
	Register[failing](
		Convert("broken", func(value any, ctx *Context) (any, error) {
			return nil, errors.New("boom")
		}),
	)
}

func TestCreateBasic(t *testing.T) {
	raw := map[string]any{
		"name":  "debian.iso",
		"size":  float64(1 << 30),
		"ratio": 1.5,
		"seen":  float64(1700000000),
		"wait":  float64(90),
		"tags":  "linux, iso",
	}
	got, err := Create[sample](raw, nil)
	require.NoError(t, err)

	assert.Equal(t, "debian.iso", got.Name)
	assert.EqualValues(t, 1<<30, got.Size)
	assert.Equal(t, 1.5, got.Ratio)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), got.Seen)
	assert.Equal(t, 90*time.Second, got.Wait)
	assert.Equal(t, []string{"linux", "iso"}, got.Tags)

	for _, key := range []string{"name", "size", "ratio", "seen", "wait", "tags"} {
		assert.True(t, got.Has(key), key)
	}
}

func TestCreateTimezone(t *testing.T) {
	loc := time.FixedZone("TST", 3600)
	got, err := Create[sample](map[string]any{"seen": float64(1700000000)}, &Context{Location: loc})
	require.NoError(t, err)
	assert.Equal(t, loc, got.Seen.Location())
}

func TestTimestampSentinelLeavesFieldAbsent(t *testing.T) {
	got, err := Create[sample](map[string]any{"seen": float64(-1)}, nil)
	require.NoError(t, err)
	assert.False(t, got.Has("seen"))
	assert.True(t, got.Seen.IsZero())

	got, err = Create[sample](map[string]any{"seen": float64(0xFFFFFFFF)}, nil)
	require.NoError(t, err)
	assert.False(t, got.Has("seen"))
}

func TestUnknownKeysLandInExtras(t *testing.T) {
	raw := map[string]any{
		"name":      "x",
		"new_field": float64(7),
		"flag2":     true,
	}
	got, err := Create[sample](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"new_field": float64(7), "flag2": true}, got.Extra())
}

func TestBadKeysRejected(t *testing.T) {
	for _, key := range []string{"_private", "has space", "dash-ed", "1st", ""} {
		_, err := Create[sample](map[string]any{key: 1}, nil)
		require.Error(t, err, key)
		var mapErr *Error
		require.ErrorAs(t, err, &mapErr)
		assert.Equal(t, key, mapErr.Field)
	}
}

func TestConverterFailureNamesField(t *testing.T) {
	_, err := Create[failing](map[string]any{"broken": "zap"}, nil)
	require.Error(t, err)

	var mapErr *Error
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "broken", mapErr.Field)
	assert.Equal(t, "zap", mapErr.Value)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "zap")
}

func TestTypeMismatchNamesField(t *testing.T) {
	_, err := Create[sample](map[string]any{"name": float64(3)}, nil)
	require.Error(t, err)
	var mapErr *Error
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "name", mapErr.Field)
}

func TestDefaults(t *testing.T) {
	got, err := Create[withDefaults](map[string]any{}, nil)
	require.NoError(t, err)
	assert.False(t, got.Full)
	assert.Equal(t, []string{}, got.Items)
	assert.True(t, got.Has("full"))
	assert.True(t, got.Has("items"))
}

func TestDefaultNotAppliedWhenPresent(t *testing.T) {
	got, err := Create[withDefaults](map[string]any{"full": true, "items": []any{"a"}}, nil)
	require.NoError(t, err)
	assert.True(t, got.Full)
	assert.Equal(t, []string{"a"}, got.Items)
}

func TestRawRetained(t *testing.T) {
	raw := map[string]any{"name": "x", "bonus": float64(1)}
	got, err := Create[sample](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, raw, got.Raw())
}

func TestCreateWithoutHeader(t *testing.T) {
	got, err := Create[plain](map[string]any{"value": float64(3)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Value)
}

func TestCreateList(t *testing.T) {
	raw := []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	}
	got, err := CreateList[sample](raw, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b", got[1].Name)

	_, err = CreateList[sample]([]any{"nope"}, nil)
	assert.Error(t, err)
}

func TestCreateMap(t *testing.T) {
	raw := map[string]any{
		"k1": map[string]any{"name": "a"},
		"k2": map[string]any{"name": "b"},
	}
	got, err := CreateMap[sample](raw, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got["k1"].Name)
}

func TestEqualToleratesMissingFields(t *testing.T) {
	a, err := Create[sample](map[string]any{"name": "x"}, nil)
	require.NoError(t, err)
	b, err := Create[sample](map[string]any{"name": "x"}, nil)
	require.NoError(t, err)
	c, err := Create[sample](map[string]any{"name": "x", "size": float64(1)}, nil)
	require.NoError(t, err)
	d, err := Create[sample](map[string]any{"name": "x", "size": float64(0)}, nil)
	require.NoError(t, err)

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c), "present field vs missing field")
	assert.False(t, Equal(c, d))
	assert.False(t, Equal(a, &withDefaults{}), "different types never compare equal")
}

func TestFormatListsPresentFieldsOnly(t *testing.T) {
	got, err := Create[sample](map[string]any{"name": "x", "extra1": true}, nil)
	require.NoError(t, err)

	s := Format(got)
	assert.Contains(t, s, "sample{")
	assert.Contains(t, s, "name=x")
	assert.Contains(t, s, "extra1=true")
	assert.NotContains(t, s, "size=")
}

func BenchmarkCreate(b *testing.B) {
	raw := map[string]any{
		"name":  "debian.iso",
		"size":  float64(1 << 30),
		"ratio": 1.5,
		"seen":  float64(1700000000),
		"wait":  float64(90),
		"tags":  "linux, iso",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Create[sample](raw, nil); err != nil {
			b.Fatal(err)
		}
	}
}
