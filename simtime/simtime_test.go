package simtime

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromNanosRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 999_999_999, -1_000_000_001, 1e15, -1e15, math.MaxInt64, math.MinInt64}
	for _, ns := range cases {
		got, ok := FromNanos(ns).Nanos()
		if !ok || got != ns {
			t.Fatalf("FromNanos(%d).Nanos() = %d, %v", ns, got, ok)
		}
	}
}

func TestBeyondInt64(t *testing.T) {
	big := FromNanos(math.MaxInt64).Add(Years(1000))
	_, ok := big.Nanos()
	assert.False(t, ok)

	back := big.Sub(FromNanos(math.MaxInt64))
	assert.Equal(t, Years(1000), back)

	parsed, err := Parse(big.String())
	require.NoError(t, err)
	assert.Equal(t, big, parsed)

	neg := FromNanos(math.MinInt64).Add(Years(-5000))
	parsed, err = Parse(neg.String())
	require.NoError(t, err)
	assert.Equal(t, neg, parsed)
}

func TestArithmetic(t *testing.T) {
	start := FromSeconds(100)
	end := start.Add(Minutes(2))
	assert.Equal(t, Seconds(120), end.Sub(start))
	assert.True(t, start.Before(end))
	assert.True(t, end.After(start))
	assert.Equal(t, Seconds(-120), start.Sub(end))
	assert.Equal(t, -1, start.Sub(end).Sign())
	assert.Equal(t, Hours(3), Hours(1).Mul(3))
	assert.Equal(t, Hours(1), Hours(3).Sub(Hours(2)))
	assert.Equal(t, Hours(-1), Hours(1).Neg())
}

func TestDurationAlgebra(t *testing.T) {
	assert.Equal(t, Years(1), Months(1).Mul(12))
	assert.Equal(t, Weeks(1), Days(7))
	assert.Equal(t, Days(1), Hours(24))
	assert.Equal(t, Hours(1), Minutes(60))
	assert.Equal(t, Minutes(1), Seconds(60))
	assert.Equal(t, Days(36525), Years(100))
}

func TestFraction(t *testing.T) {
	period := Days(1)
	assert.InDelta(t, 0.5, FromNanos(NanosPerDay/2).Fraction(period), 1e-15)
	assert.InDelta(t, 0.75, FromNanos(-NanosPerDay/4).Fraction(period), 1e-15)
	assert.Equal(t, 0.0, FromNanos(3*NanosPerDay).Fraction(period))
	assert.Equal(t, 0.0, FromNanos(42).Fraction(SimDuration{}))

	far := Epoch.Add(Years(1_000_000_000)).Add(Hours(6))
	assert.InDelta(t, 0.25, far.Fraction(period), 1e-12)
}

func TestTruncateAndSteps(t *testing.T) {
	tm := FromNanos(-1)
	assert.Equal(t, FromNanos(-NanosPerSecond), tm.Truncate(Seconds(1)))
	assert.Equal(t, Nanoseconds(NanosPerSecond-1), tm.Mod(Seconds(1)))
	assert.Equal(t, SimDuration{}, tm.Mod(SimDuration{}))

	n, ok := Days(10).Steps(Hours(1))
	require.True(t, ok)
	assert.Equal(t, int64(240), n)

	_, ok = Days(1).Steps(SimDuration{})
	assert.False(t, ok)
}

func TestSimDateRoundTrip(t *testing.T) {
	for _, d := range []SimDate{
		{Year: 0, Month: 1, Day: 1},
		{Year: 2024, Month: 2, Day: 29},
		{Year: 12, Month: 12, Day: 31},
		{Year: -3, Month: 7, Day: 15},
		{Year: 1_000_000_000, Month: 6, Day: 30},
	} {
		tm, err := FromSimDate(d)
		require.NoError(t, err)
		assert.Equal(t, d, tm.SimDate(), "round trip of %s", d)
	}
}

func TestSimDateAnyInstant(t *testing.T) {
	for _, ns := range []int64{0, 1, -1, 1e15, -1e15, 123456789012345678} {
		tm := FromNanos(ns)
		d := tm.SimDate()
		start, err := FromSimDate(d)
		require.NoError(t, err)
		assert.Equal(t, tm, start.Add(tm.SinceSimMidnight()), "instant %d", ns)
	}
}

func TestSimDateValidation(t *testing.T) {
	_, err := FromSimDate(SimDate{Year: 1, Month: 13, Day: 1})
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = FromSimDate(SimDate{Year: 1, Month: 1, Day: 32})
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = FromSimDate(SimDate{Year: 1, Month: 1, Day: 0})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestGregorian(t *testing.T) {
	leap := Date(2024, time.February, 29, 12, 30, 0, 5)
	tm, err := leap.Time()
	require.NoError(t, err)
	assert.Equal(t, 2024, tm.Year())
	assert.Equal(t, time.February, tm.Month())
	assert.Equal(t, 29, tm.Day())
	assert.Equal(t, 5, tm.Nanosecond())
	assert.Equal(t, leap, FromTime(tm))

	assert.Equal(t, "2024-02-29T12:30:00.000000005Z", leap.RFC3339())
	parsed, err := ParseRFC3339("2024-02-29T12:30:00.000000005Z")
	require.NoError(t, err)
	assert.Equal(t, leap, parsed)

	before := Date(1969, time.December, 31, 23, 59, 59, 0)
	ns, ok := before.Nanos()
	require.True(t, ok)
	assert.Equal(t, -NanosPerSecond, ns)
}

func TestGregorianOutOfRange(t *testing.T) {
	far := FromNanos(math.MaxInt64).Add(Years(1_000_000_000_000))
	_, err := far.Time()
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, far.String(), far.RFC3339())
}

func TestJSONWireFormat(t *testing.T) {
	type payload struct {
		At   SimTime     `json:"at"`
		Span SimDuration `json:"span"`
	}
	in := payload{At: FromNanos(math.MaxInt64).Add(Seconds(1)), Span: Days(-2)}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"9223372037854775807","span":"-172800000000000"}`, string(b))

	var out payload
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)

	require.NoError(t, json.Unmarshal([]byte(`{"at":42,"span":7}`), &out))
	assert.Equal(t, FromNanos(42), out.At)
	assert.Equal(t, Nanoseconds(7), out.Span)

	assert.Error(t, json.Unmarshal([]byte(`{"at":"soon"}`), &out))
}

func TestJSONNullLeavesValue(t *testing.T) {
	type payload struct {
		At   SimTime     `json:"at"`
		Span SimDuration `json:"span"`
	}
	out := payload{At: FromNanos(5), Span: Hours(1)}
	require.NoError(t, json.Unmarshal([]byte(`{"at":null,"span":null}`), &out))
	assert.Equal(t, FromNanos(5), out.At)
	assert.Equal(t, Hours(1), out.Span)

	d := Days(3)
	require.NoError(t, d.UnmarshalJSON([]byte(" null ")))
	assert.Equal(t, Days(3), d)
}
