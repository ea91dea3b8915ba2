// Package chrono provides time-unit conversions shared by the parameter
// encoder and the response converters.
package chrono

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// TimeUnit is the size of one unit expressed as a time.Duration.
type TimeUnit time.Duration

const (
	Nanoseconds  TimeUnit = TimeUnit(time.Nanosecond)
	Microseconds TimeUnit = TimeUnit(time.Microsecond)
	Milliseconds TimeUnit = TimeUnit(time.Millisecond)
	Seconds      TimeUnit = TimeUnit(time.Second)
	Minutes      TimeUnit = TimeUnit(time.Minute)
	Hours        TimeUnit = TimeUnit(time.Hour)
	Days         TimeUnit = TimeUnit(24 * time.Hour)
)

func (u TimeUnit) String() string {
	switch u {
	case Nanoseconds:
		return "nanoseconds"
	case Microseconds:
		return "microseconds"
	case Milliseconds:
		return "milliseconds"
	case Seconds:
		return "seconds"
	case Minutes:
		return "minutes"
	case Hours:
		return "hours"
	case Days:
		return "days"
	}
	return "unknown"
}

// Count converts d into a whole number of units, truncating toward zero.
func (u TimeUnit) Count(d time.Duration) int64 {
	return int64(d) / int64(u)
}

// Duration converts a unit count into a time.Duration. Non-finite counts
// are rejected.
func (u TimeUnit) Duration(count float64) (time.Duration, error) {
	if math.IsInf(count, 0) || math.IsNaN(count) {
		return 0, errors.Errorf("non-finite duration count: %v", count)
	}
	return time.Duration(count * float64(u)), nil
}
