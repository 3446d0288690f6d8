package emulator

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestConfigDefault(t *testing.T) {
	assert := assert.New(t)

	config := DefaultConfig()
	assert.NoError(config.Validate())

	quirks, err := config.Quirks()
	assert.NoError(err)
	assert.Equal(cpu.Quirks{}, quirks)
}

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	text := `
instructions_per_second = 1000
frame_rate = 30
shift_vx = true
key_wait = "noop"
seed = 42
`
	config := DefaultConfig()
	err := LoadConfig(strings.NewReader(text), &config)
	assert.NoError(err)

	assert.Equal(1000, config.InstructionsPerSecond)
	assert.Equal(30, config.FrameRate)
	assert.Equal(uint64(42), config.Seed)
	assert.Equal(DefaultKeymap, config.Keymap)

	quirks, err := config.Quirks()
	assert.NoError(err)
	assert.True(quirks.ShiftVx)
	assert.Equal(cpu.KEY_WAIT_NOOP, quirks.KeyWait)
}

func TestLoadConfigKeymap(t *testing.T) {
	assert := assert.New(t)

	defaults := slices.Clone(DefaultKeymap)

	text := `keymap = ["0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "a", "b", "c", "d", "e", "f"]`
	config := DefaultConfig()
	err := LoadConfig(strings.NewReader(text), &config)
	assert.NoError(err)

	assert.Equal("0", config.Keymap[0])
	assert.Equal("f", config.Keymap[15])
	assert.Equal(defaults, DefaultKeymap)
	assert.Equal(defaults, DefaultConfig().Keymap)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"key_wait", `key_wait = "sometimes"`},
		{"ips", `instructions_per_second = -1`},
		{"frame_rate", `frame_rate = -5`},
		{"keymap", `keymap = ["a", "b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			config := DefaultConfig()
			err := LoadConfig(strings.NewReader(tt.text), &config)
			assert.ErrorIs(err, ErrConfig)
		})
	}

	assert.Error(t, LoadConfig(strings.NewReader("not toml ="), &Config{}))
}
