package simtime

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned for synthetic dates outside the calendar.
var ErrInvalidDate = errors.New("simtime: invalid synthetic date")

// DaysPerSimMonth bounds the day-of-month in the synthetic calendar. A
// synthetic month lasts 30.4375 days so every month has a (partial) day 31.
const DaysPerSimMonth = 31

// SimDate is a day in the synthetic calendar. Year 0 starts at the epoch;
// earlier instants have negative years. Month is 1-12, Day is 1-31.
type SimDate struct {
	Year  int64 `json:"year"`
	Month int   `json:"month"`
	Day   int   `json:"day"`
}

// Validate checks the month and day ranges.
func (d SimDate) Validate() error {
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidDate, d.Month)
	}
	if d.Day < 1 || d.Day > DaysPerSimMonth {
		return fmt.Errorf("%w: day %d", ErrInvalidDate, d.Day)
	}
	return nil
}

func (d SimDate) String() string {
	return fmt.Sprintf("Y%d-M%02d-D%02d", d.Year, d.Month, d.Day)
}

// FromSimDate returns the first instant of the given synthetic day.
func FromSimDate(d SimDate) (SimTime, error) {
	if err := d.Validate(); err != nil {
		return SimTime{}, err
	}
	v := i128(d.Year).mul64(NanosPerYear).
		add(i128(int64(d.Month - 1)).mul64(NanosPerMonth)).
		add(i128(int64(d.Day - 1)).mul64(NanosPerDay))
	return SimTime{v: v}, nil
}

// SimDate returns the synthetic day containing t.
func (t SimTime) SimDate() SimDate {
	year, rem := t.v.divmod64(NanosPerYear)
	month := rem / NanosPerMonth
	day := (rem % NanosPerMonth) / NanosPerDay
	y, _ := year.int64()
	return SimDate{Year: y, Month: int(month) + 1, Day: int(day) + 1}
}

// SinceSimMidnight returns the offset of t from the start of its synthetic day.
func (t SimTime) SinceSimMidnight() SimDuration {
	_, rem := t.v.divmod64(NanosPerYear)
	return Nanoseconds((rem % NanosPerMonth) % NanosPerDay)
}

// FromTime converts a wall-clock instant to simulated time.
func FromTime(tm time.Time) SimTime {
	v := i128(tm.Unix()).mul64(NanosPerSecond).add(i128(int64(tm.Nanosecond())))
	return SimTime{v: v}
}

// Time converts t to a Gregorian wall-clock instant in UTC. Leap seconds
// are not modelled. It fails when the second count overflows an int64.
func (t SimTime) Time() (time.Time, error) {
	sec, nsec := t.v.divmod64(NanosPerSecond)
	s, ok := sec.int64()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s ns", ErrOutOfRange, t)
	}
	return time.Unix(s, nsec).UTC(), nil
}

// RFC3339 formats t as an RFC 3339 timestamp with nanoseconds. Instants
// outside the representable Gregorian range fall back to the decimal
// nanosecond form.
func (t SimTime) RFC3339() string {
	tm, err := t.Time()
	if err != nil || tm.Year() < 0 || tm.Year() > 9999 {
		return t.String()
	}
	return tm.Format(time.RFC3339Nano)
}

// ParseRFC3339 parses an RFC 3339 timestamp into simulated time.
func ParseRFC3339(s string) (SimTime, error) {
	tm, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return SimTime{}, fmt.Errorf("parse rfc3339: %w", err)
	}
	return FromTime(tm), nil
}

// Date builds a SimTime from a Gregorian date-time in UTC.
func Date(year int, month time.Month, day, hour, min, sec, nsec int) SimTime {
	return FromTime(time.Date(year, month, day, hour, min, sec, nsec, time.UTC))
}
