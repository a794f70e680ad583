// Package duration provides a calendar-aware duration value.
//
// Unlike [time.Duration], a [Duration] keeps every unit it was built from
// (years through milliseconds) separately. Scaling with [Duration.Multiply]
// applies the factor to each unit and rounds each one independently, so a
// backoff policy behaves the same whether its base is expressed as
// milliseconds or as composite units.
//
// A Duration is resolved to wall-clock time only when it is used, via
// [Duration.Std] or [Duration.StdFrom].
package duration

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// Duration is a span of time expressed in calendar units.
// The zero value is an empty duration.
type Duration struct {
	Years        int64
	Months       int64
	Weeks        int64
	Days         int64
	Hours        int64
	Minutes      int64
	Seconds      int64
	Milliseconds int64
}

// Milliseconds returns a Duration of n milliseconds.
func Milliseconds(n int64) Duration { return Duration{Milliseconds: n} }

// Seconds returns a Duration of n seconds.
func Seconds(n int64) Duration { return Duration{Seconds: n} }

// Minutes returns a Duration of n minutes.
func Minutes(n int64) Duration { return Duration{Minutes: n} }

// Hours returns a Duration of n hours.
func Hours(n int64) Duration { return Duration{Hours: n} }

// Days returns a Duration of n days.
func Days(n int64) Duration { return Duration{Days: n} }

// FromStd converts a [time.Duration] into hours, minutes, seconds and
// milliseconds. Sub-millisecond precision is truncated.
func FromStd(d time.Duration) Duration {
	ms := d.Milliseconds()
	out := Duration{}
	out.Hours, ms = ms/int64(time.Hour/time.Millisecond), ms%int64(time.Hour/time.Millisecond)
	out.Minutes, ms = ms/int64(time.Minute/time.Millisecond), ms%int64(time.Minute/time.Millisecond)
	out.Seconds, ms = ms/int64(time.Second/time.Millisecond), ms%int64(time.Second/time.Millisecond)
	out.Milliseconds = ms
	return out
}

// Parse reads strings such as "1w2d", "1h30m", "250ms" into a Duration.
func Parse(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Duration{}, fmt.Errorf("duration: empty string")
	}
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return Duration{}, fmt.Errorf("duration: parse %q: %w", s, err)
	}
	return FromStd(d), nil
}

// MustParse is like [Parse] but panics on error.
func MustParse(s string) Duration {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether every unit is zero.
func (d Duration) IsZero() bool {
	return d == Duration{}
}

// Multiply scales every unit by factor, rounding each unit to the nearest
// integer independently.
func (d Duration) Multiply(factor float64) Duration {
	scale := func(v int64) int64 {
		return int64(math.Round(float64(v) * factor))
	}
	return Duration{
		Years:        scale(d.Years),
		Months:       scale(d.Months),
		Weeks:        scale(d.Weeks),
		Days:         scale(d.Days),
		Hours:        scale(d.Hours),
		Minutes:      scale(d.Minutes),
		Seconds:      scale(d.Seconds),
		Milliseconds: scale(d.Milliseconds),
	}
}

// Add returns the unit-wise sum of d and o.
func (d Duration) Add(o Duration) Duration {
	return Duration{
		Years:        d.Years + o.Years,
		Months:       d.Months + o.Months,
		Weeks:        d.Weeks + o.Weeks,
		Days:         d.Days + o.Days,
		Hours:        d.Hours + o.Hours,
		Minutes:      d.Minutes + o.Minutes,
		Seconds:      d.Seconds + o.Seconds,
		Milliseconds: d.Milliseconds + o.Milliseconds,
	}
}

// StdFrom resolves d against the instant from. Calendar units (years,
// months, weeks, days) follow [time.Time.AddDate], so their length depends
// on from.
func (d Duration) StdFrom(from time.Time) time.Duration {
	target := from.AddDate(int(d.Years), int(d.Months), int(d.Weeks*7+d.Days))
	target = target.Add(time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second +
		time.Duration(d.Milliseconds)*time.Millisecond)
	return target.Sub(from)
}

// Std resolves d against the current time.
func (d Duration) Std() time.Duration {
	return d.StdFrom(time.Now())
}

// String renders the non-zero units in narrow form, e.g. "1h 30m" or "250ms".
func (d Duration) String() string {
	units := []struct {
		v      int64
		suffix string
	}{
		{d.Years, "y"},
		{d.Months, "mo"},
		{d.Weeks, "w"},
		{d.Days, "d"},
		{d.Hours, "h"},
		{d.Minutes, "m"},
		{d.Seconds, "s"},
		{d.Milliseconds, "ms"},
	}

	parts := make([]string, 0, len(units))
	for _, u := range units {
		if u.v != 0 {
			parts = append(parts, fmt.Sprintf("%d%s", u.v, u.suffix))
		}
	}
	if len(parts) == 0 {
		return "0ms"
	}
	return strings.Join(parts, " ")
}
