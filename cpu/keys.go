package cpu

import (
	"fmt"
)

const KEY_COUNT = 16

// Keys is a snapshot of the hex keypad. Bit n is set while key n is pressed.
type Keys uint16

// Pressed reports whether key is down. Keys past KEY_COUNT are never down.
func (k Keys) Pressed(key uint8) bool {
	if key >= KEY_COUNT {
		return false
	}
	return k&(1<<key) != 0
}

// With returns the snapshot with key marked down.
func (k Keys) With(key uint8) Keys {
	return k | 1<<(key&0xf)
}

// Without returns the snapshot with key marked up.
func (k Keys) Without(key uint8) Keys {
	return k &^ (1 << (key & 0xf))
}

// Pressing returns the lowest key that is down in k but was up in prior.
func (k Keys) Pressing(prior Keys) (key uint8, ok bool) {
	edge := k &^ prior
	for n := range uint8(KEY_COUNT) {
		if edge.Pressed(n) {
			return n, true
		}
	}
	return
}

func (k Keys) String() string {
	return fmt.Sprintf("%016b", uint16(k))
}
