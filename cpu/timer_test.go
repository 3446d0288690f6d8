package cpu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimers_Update(t *testing.T) {
	assert := assert.New(t)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := &Timers{Delay: 30, Sound: 3}

	// The first update only starts the clock.
	tm.Update(start)
	assert.Equal(uint8(30), tm.Delay)

	tm.Update(start.Add(5 * TIMER_PERIOD))
	assert.Equal(uint8(25), tm.Delay)
	assert.Equal(uint8(0), tm.Sound)

	// Partial periods carry over.
	tm.Update(start.Add(5*TIMER_PERIOD + TIMER_PERIOD/2))
	assert.Equal(uint8(25), tm.Delay)
	tm.Update(start.Add(6 * TIMER_PERIOD))
	assert.Equal(uint8(24), tm.Delay)

	// Timers floor at zero.
	tm.Update(start.Add(time.Minute))
	assert.Equal(uint8(0), tm.Delay)
	assert.Equal(uint8(0), tm.Sound)
}

func TestTimers_Rate(t *testing.T) {
	assert := assert.New(t)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := &Timers{Delay: 255}
	tm.Update(start)

	// Many updates within one second still give 60 decrements.
	for n := range 1000 {
		tm.Update(start.Add(time.Duration(n+1) * time.Millisecond))
	}
	assert.Equal(uint8(255-TIMER_RATE), tm.Delay)
}

func TestTimers_Reset(t *testing.T) {
	assert := assert.New(t)

	tm := &Timers{Delay: 1, Sound: 2}
	tm.Update(time.Now())
	tm.Reset()

	assert.Equal(Timers{}, *tm)
}
