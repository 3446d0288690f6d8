package emulator

import (
	"time"
)

// Clock is the wall-clock source for the emulator.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the host wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
