package contract

import "time"

// Clock supplies the current time. Engine code never reads the wall clock directly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time truncated to milliseconds, the stored precision.
func (SystemClock) Now() time.Time {
	return time.Now().Truncate(time.Millisecond)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// FixedClock returns a clock frozen at t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
