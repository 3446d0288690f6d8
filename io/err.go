package io

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrRomSize    = errors.New(f("rom too large"))
	ErrRomEmpty   = errors.New(f("rom empty"))
	ErrKeymapSize = errors.New(f("keymap must have 16 keys"))
	ErrNotTty     = errors.New(f("not a terminal"))
)

// ErrKeymapKey is a keymap entry that is not a single character.
type ErrKeymapKey string

func (err ErrKeymapKey) Error() string {
	return f("keymap key '%v' invalid", string(err))
}

// ErrKeymapDuplicate is a host key assigned to more than one keypad key.
type ErrKeymapDuplicate string

func (err ErrKeymapDuplicate) Error() string {
	return f("keymap key '%v' duplicated", string(err))
}
