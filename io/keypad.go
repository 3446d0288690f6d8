package io

import (
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ezrec/chip8/cpu"
)

// Keymap maps host characters to keypad keys.
type Keymap map[rune]uint8

// NewKeymap builds a keymap from one single-character name per keypad key,
// in keypad order 0 to F. Letters match either case.
func NewKeymap(names []string) (keymap Keymap, err error) {
	if len(names) != cpu.KEY_COUNT {
		err = ErrKeymapSize
		return
	}

	keymap = Keymap{}
	for key, name := range names {
		ch, size := utf8.DecodeRuneInString(name)
		if size == 0 || size != len(name) || ch == utf8.RuneError {
			err = ErrKeymapKey(name)
			return
		}
		ch = unicode.ToLower(ch)
		if _, ok := keymap[ch]; ok {
			err = ErrKeymapDuplicate(name)
			return
		}
		keymap[ch] = uint8(key)
	}

	return
}

// Key returns the keypad key for a host character.
func (km Keymap) Key(ch rune) (key uint8, ok bool) {
	key, ok = km[unicode.ToLower(ch)]
	return
}

// Keypad is a keypad shared between an input goroutine and the emulator.
// If Hold is set, a pressed key releases itself after Hold has elapsed,
// for hosts that report key presses but never key releases.
type Keypad struct {
	Hold time.Duration    // Auto-release delay; zero holds until Release.
	Now  func() time.Time // Clock for Hold; nil uses time.Now.

	mutex sync.Mutex
	keys  cpu.Keys
	until [cpu.KEY_COUNT]time.Time
}

func (kp *Keypad) now() time.Time {
	if kp.Now == nil {
		return time.Now()
	}
	return kp.Now()
}

// Press a key down.
func (kp *Keypad) Press(key uint8) {
	if key >= cpu.KEY_COUNT {
		return
	}

	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.keys = kp.keys.With(key)
	if kp.Hold > 0 {
		kp.until[key] = kp.now().Add(kp.Hold)
	}
}

// Release a key.
func (kp *Keypad) Release(key uint8) {
	if key >= cpu.KEY_COUNT {
		return
	}

	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.keys = kp.keys.Without(key)
}

// Set replaces the state of all keys.
func (kp *Keypad) Set(keys cpu.Keys) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.keys = keys
}

// Keys returns a snapshot of the keys held down.
func (kp *Keypad) Keys() cpu.Keys {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	if kp.Hold > 0 {
		now := kp.now()
		for key := range uint8(cpu.KEY_COUNT) {
			if kp.keys.Pressed(key) && !now.Before(kp.until[key]) {
				kp.keys = kp.keys.Without(key)
			}
		}
	}

	return kp.keys
}
