package cpu

import (
	"time"
)

const (
	TIMER_RATE   = 60 // Timer decrements per second.
	TIMER_PERIOD = time.Second / TIMER_RATE
)

// Timers are the delay and sound countdown counters.
type Timers struct {
	Delay uint8
	Sound uint8

	last time.Time // Time of the last decrement.
}

// Update decrements both timers once for every whole timer period elapsed
// since the last decrement. The first call only starts the clock.
func (tm *Timers) Update(now time.Time) {
	if tm.last.IsZero() {
		tm.last = now
		return
	}

	elapsed := now.Sub(tm.last)
	if elapsed < TIMER_PERIOD {
		return
	}

	ticks := elapsed / TIMER_PERIOD
	tm.last = tm.last.Add(ticks * TIMER_PERIOD)

	tm.Delay = countdown(tm.Delay, ticks)
	tm.Sound = countdown(tm.Sound, ticks)
}

func countdown(value uint8, ticks time.Duration) uint8 {
	if time.Duration(value) <= ticks {
		return 0
	}
	return value - uint8(ticks)
}

// Reset zeroes both timers and stops the clock.
func (tm *Timers) Reset() {
	*tm = Timers{}
}
