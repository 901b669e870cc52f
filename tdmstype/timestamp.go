package tdmstype

import (
	"math/bits"
	"time"
)

// epochOffsetSeconds is the number of seconds between the TDMS epoch
// (1904-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01 00:00:00 UTC).
const epochOffsetSeconds int64 = 2082844800

// Timestamp is the TDMS on-disk timestamp representation: whole seconds
// since 1904-01-01 UTC plus a fractional-second field in units of 2⁻⁶⁴ s.
type Timestamp struct {
	Seconds   int64
	Fractions uint64
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return FromTime(time.Now())
}

// FromTime converts a time.Time to a TDMS Timestamp.
func FromTime(t time.Time) Timestamp {
	unixSeconds := t.Unix()
	nanos := uint64(t.Nanosecond()) //nolint:gosec

	// fractions = floor(nanos * 2^64 / 1e9). nanos*2^64, as a 128-bit value,
	// has nanos as its high word and 0 as its low word, so this is an exact
	// single division rather than a lossy uint64 multiply-then-divide.
	fractions, _ := bits.Div64(nanos, 0, 1_000_000_000)

	return Timestamp{
		Seconds:   unixSeconds + epochOffsetSeconds,
		Fractions: fractions,
	}
}

// Time converts the Timestamp to a best-effort time.Time (sub-nanosecond
// fraction precision beyond what time.Time carries is discarded).
func (ts Timestamp) Time() time.Time {
	unixSeconds := ts.Seconds - epochOffsetSeconds

	// nanos = floor(fractions * 1e9 / 2^64): the high word of the 128-bit
	// product is exactly that quotient.
	nanos, _ := bits.Mul64(ts.Fractions, 1_000_000_000)

	return time.Unix(unixSeconds, int64(nanos)).UTC() //nolint:gosec
}
