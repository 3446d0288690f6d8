package emulator

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrConfig = errors.New(f("config"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Addr   uint16 // Address of the faulting instruction.
	LineNo int    // Source line, if the program was assembled.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("0x%03x %v", err.Addr, err.Err)
	}
	return f("0x%03x line %d %v", err.Addr, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrConfigValue reports an invalid configuration setting.
type ErrConfigValue struct {
	Key   string
	Value any
}

func (err ErrConfigValue) Error() string {
	return f("config %v: invalid value %v", err.Key, err.Value)
}

func (err ErrConfigValue) Unwrap() error {
	return ErrConfig
}
