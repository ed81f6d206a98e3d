// Package simtime models simulated time as signed 128-bit nanosecond counts.
//
// A SimTime is an instant measured from the simulation epoch
// (1970-01-01T00:00:00Z); a SimDuration is a signed span between two
// instants. Both are plain values: comparable with ==, safe to copy and to
// share between goroutines.
//
// Two calendars read the same integer. The Gregorian calendar (see
// SimTime.Time) is for display and logging. The synthetic calendar (see
// SimDate) uses a fixed 365.25 day year split into twelve equal months, so
// that date arithmetic never branches on leap years and always inverts
// exactly.
package simtime

import (
	"errors"
	"math"
)

// Fixed nanosecond counts per unit. None of these depend on the host
// calendar.
const (
	NanosPerSecond = int64(1_000_000_000)
	NanosPerMinute = 60 * NanosPerSecond
	NanosPerHour   = 60 * NanosPerMinute
	NanosPerDay    = 24 * NanosPerHour
	NanosPerWeek   = 7 * NanosPerDay
	// NanosPerYear is exactly 365.25 days.
	NanosPerYear = 36525 * NanosPerDay / 100
	// NanosPerMonth is exactly one twelfth of a year.
	NanosPerMonth = NanosPerYear / 12
)

// ErrOutOfRange is returned when a value cannot be represented by the
// requested target type.
var ErrOutOfRange = errors.New("simtime: value out of range")

// SimDuration is a signed span of simulated nanoseconds.
type SimDuration struct {
	v int128
}

// SimTime is an instant in simulated nanoseconds since the epoch.
type SimTime struct {
	v int128
}

// Epoch is the zero instant.
var Epoch = SimTime{}

// FromNanos builds a SimTime from an int64 nanosecond count.
func FromNanos(ns int64) SimTime { return SimTime{v: i128(ns)} }

// FromSeconds builds a SimTime from whole seconds since the epoch.
func FromSeconds(s int64) SimTime { return SimTime{v: i128(s).mul64(NanosPerSecond)} }

// FromNanos128 builds a SimTime from a 128-bit count given as its high
// (signed) and low (unsigned) 64-bit words.
func FromNanos128(hi int64, lo uint64) SimTime { return SimTime{v: int128{hi: hi, lo: lo}} }

// Nanos returns the instant as an int64 nanosecond count when it fits.
func (t SimTime) Nanos() (int64, bool) { return t.v.int64() }

// Nanos128 returns the high and low words of the nanosecond count.
func (t SimTime) Nanos128() (int64, uint64) { return t.v.hi, t.v.lo }

// Add returns t+d.
func (t SimTime) Add(d SimDuration) SimTime { return SimTime{v: t.v.add(d.v)} }

// Sub returns the duration t-u.
func (t SimTime) Sub(u SimTime) SimDuration { return SimDuration{v: t.v.sub(u.v)} }

// Before reports whether t is before u.
func (t SimTime) Before(u SimTime) bool { return t.v.cmp(u.v) < 0 }

// After reports whether t is after u.
func (t SimTime) After(u SimTime) bool { return t.v.cmp(u.v) > 0 }

// Compare returns -1, 0 or +1.
func (t SimTime) Compare(u SimTime) int { return t.v.cmp(u.v) }

// Seconds returns the time since the epoch in floating point seconds.
// It is lossy far from the epoch and meant for physics, not bookkeeping.
func (t SimTime) Seconds() float64 { return t.v.float64() / float64(NanosPerSecond) }

// Fraction returns where t falls inside a repeating cycle of the given
// period, in [0, 1). The phase is computed from the exact integer remainder
// when the period fits in 64 bits, so it does not drift far from the
// epoch. A non-positive period yields 0.
func (t SimTime) Fraction(period SimDuration) float64 {
	if period.v.sign() <= 0 {
		return 0
	}
	if p, ok := period.v.int64(); ok {
		_, rem := t.v.divmod64(p)
		return float64(rem) / float64(p)
	}
	f := math.Mod(t.v.float64()/period.v.float64(), 1)
	if f < 0 {
		f++
	}
	if f >= 1 {
		f = 0
	}
	return f
}

// Mod returns the floored remainder of t by d, in [0, d). d must be
// positive and fit in 64 bits; otherwise the zero duration is returned.
func (t SimTime) Mod(d SimDuration) SimDuration {
	p, ok := d.v.int64()
	if !ok || p <= 0 {
		return SimDuration{}
	}
	_, rem := t.v.divmod64(p)
	return Nanoseconds(rem)
}

// Truncate rounds t down to a multiple of d (floored, also before the epoch).
// d must fit in 64 bits; otherwise t is returned unchanged.
func (t SimTime) Truncate(d SimDuration) SimTime {
	p, ok := d.v.int64()
	if !ok || p <= 0 {
		return t
	}
	q, _ := t.v.divmod64(p)
	return SimTime{v: q.mul64(p)}
}

// Duration constructors. Every helper is a pure integer multiplication.

// Nanoseconds returns n nanoseconds.
func Nanoseconds(n int64) SimDuration { return SimDuration{v: i128(n)} }

// Seconds returns n seconds.
func Seconds(n int64) SimDuration { return SimDuration{v: i128(n).mul64(NanosPerSecond)} }

// Minutes returns n minutes.
func Minutes(n int64) SimDuration { return SimDuration{v: i128(n).mul64(NanosPerMinute)} }

// Hours returns n hours.
func Hours(n int64) SimDuration { return SimDuration{v: i128(n).mul64(NanosPerHour)} }

// Days returns n days.
func Days(n int64) SimDuration { return SimDuration{v: i128(n).mul64(NanosPerDay)} }

// Weeks returns n weeks.
func Weeks(n int64) SimDuration { return SimDuration{v: i128(n).mul64(NanosPerWeek)} }

// Months returns n synthetic months (one twelfth of a synthetic year).
func Months(n int64) SimDuration { return SimDuration{v: i128(n).mul64(NanosPerMonth)} }

// Years returns n synthetic years of 365.25 days.
func Years(n int64) SimDuration { return SimDuration{v: i128(n).mul64(NanosPerYear)} }

// DurationFromNanos128 builds a duration from high and low words.
func DurationFromNanos128(hi int64, lo uint64) SimDuration {
	return SimDuration{v: int128{hi: hi, lo: lo}}
}

// Nanos returns d as int64 nanoseconds when it fits.
func (d SimDuration) Nanos() (int64, bool) { return d.v.int64() }

// Nanos128 returns the high and low words of d.
func (d SimDuration) Nanos128() (int64, uint64) { return d.v.hi, d.v.lo }

// Add returns d+e.
func (d SimDuration) Add(e SimDuration) SimDuration { return SimDuration{v: d.v.add(e.v)} }

// Sub returns d-e.
func (d SimDuration) Sub(e SimDuration) SimDuration { return SimDuration{v: d.v.sub(e.v)} }

// Mul returns d*n.
func (d SimDuration) Mul(n int64) SimDuration { return SimDuration{v: d.v.mul64(n)} }

// Neg returns -d.
func (d SimDuration) Neg() SimDuration { return SimDuration{v: d.v.neg()} }

// Sign returns -1, 0 or +1.
func (d SimDuration) Sign() int { return d.v.sign() }

// Compare returns -1, 0 or +1.
func (d SimDuration) Compare(e SimDuration) int { return d.v.cmp(e.v) }

// Seconds returns d in floating point seconds.
func (d SimDuration) Seconds() float64 { return d.v.float64() / float64(NanosPerSecond) }

// Steps returns how many whole steps of size step fit in d (floored). It
// reports false when step is not a positive 64-bit duration or the count
// does not fit in an int64.
func (d SimDuration) Steps(step SimDuration) (int64, bool) {
	p, ok := step.v.int64()
	if !ok || p <= 0 {
		return 0, false
	}
	q, _ := d.v.divmod64(p)
	return q.int64()
}
