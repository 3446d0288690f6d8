package emulator

import (
	"io"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/chip8/cpu"
)

const (
	DEFAULT_IPS        = 700 // Instructions per second.
	DEFAULT_FRAME_RATE = 60  // Display presentations per second.
)

// DefaultKeymap maps keypad keys 0-F to the left side of a QWERTY keyboard.
var DefaultKeymap = []string{
	"x", "1", "2", "3",
	"q", "w", "e", "a",
	"s", "d", "z", "c",
	"4", "r", "f", "v",
}

// Config holds the emulator settings.
type Config struct {
	InstructionsPerSecond int      `toml:"instructions_per_second"` // 0 runs unthrottled.
	FrameRate             int      `toml:"frame_rate"`              // 0 presents every cycle.
	ShiftVx               bool     `toml:"shift_vx"`                // 8xy6/8xyE shift Vx.
	KeyWait               string   `toml:"key_wait"`                // "suspend" or "noop".
	Seed                  uint64   `toml:"seed"`                    // 0 picks a random seed.
	Keymap                []string `toml:"keymap"`                  // Host key for each keypad key.
	Frontend              string   `toml:"frontend"`                // "term" or "window".
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		InstructionsPerSecond: DEFAULT_IPS,
		FrameRate:             DEFAULT_FRAME_RATE,
		KeyWait:               cpu.KEY_WAIT_SUSPEND.String(),
		Keymap:                slices.Clone(DefaultKeymap),
		Frontend:              "term",
	}
}

// LoadConfig decodes TOML settings over config, then validates the result.
func LoadConfig(input io.Reader, config *Config) (err error) {
	_, err = toml.NewDecoder(input).Decode(config)
	if err != nil {
		return
	}

	err = config.Validate()
	return
}

// Validate checks the settings for consistency.
func (config *Config) Validate() (err error) {
	switch {
	case config.InstructionsPerSecond < 0:
		err = ErrConfigValue{Key: "instructions_per_second", Value: config.InstructionsPerSecond}
	case config.FrameRate < 0:
		err = ErrConfigValue{Key: "frame_rate", Value: config.FrameRate}
	case len(config.Keymap) != cpu.KEY_COUNT:
		err = ErrConfigValue{Key: "keymap", Value: config.Keymap}
	}
	if err != nil {
		return
	}

	_, err = config.Quirks()
	return
}

// Quirks returns the CPU dialect selected by the settings.
func (config *Config) Quirks() (quirks cpu.Quirks, err error) {
	quirks.ShiftVx = config.ShiftVx

	switch config.KeyWait {
	case "", cpu.KEY_WAIT_SUSPEND.String():
		quirks.KeyWait = cpu.KEY_WAIT_SUSPEND
	case cpu.KEY_WAIT_NOOP.String():
		quirks.KeyWait = cpu.KEY_WAIT_NOOP
	default:
		err = ErrConfigValue{Key: "key_wait", Value: config.KeyWait}
	}

	return
}
