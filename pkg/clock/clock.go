package clock

import "time"

// Clock abstracts the time source so cutoff and future-date checks are
// testable with injected times.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by the wall clock.
func System() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

// NewFixed pins the clock at the provided instant.
func NewFixed(instant time.Time) *Fixed {
	return &Fixed{Instant: instant}
}

func (f *Fixed) Now() time.Time {
	return f.Instant
}

// Set moves the fixed clock to a new instant.
func (f *Fixed) Set(instant time.Time) {
	f.Instant = instant
}
