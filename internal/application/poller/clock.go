package poller

import "time"

// Clock supplies the wall-clock time stamped into checkpoints. Detection
// compares record timestamps against the previous cycle's stamp, so tests
// substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system wall clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}
