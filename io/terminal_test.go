package io

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func testKeymap(t *testing.T) Keymap {
	keymap, err := NewKeymap([]string{
		"x", "1", "2", "3",
		"q", "w", "e", "a",
		"s", "d", "z", "c",
		"4", "r", "f", "v",
	})
	assert.NoError(t, err)
	return keymap
}

func TestRenderFrame(t *testing.T) {
	assert := assert.New(t)

	var d cpu.Display
	d.Draw(0, 0, []uint8{0x80, 0x00, 0x80})
	d.Draw(2, 1, []uint8{0x80, 0x00})
	d.Draw(4, 0, []uint8{0x80, 0x80})

	text := RenderFrame(d.Snapshot())
	lines := strings.Split(text, "\r\n")
	assert.Len(lines, cpu.DISPLAY_HEIGHT/2+1)
	assert.Equal("", lines[len(lines)-1])

	row0 := []rune(lines[0])
	assert.Len(row0, cpu.DISPLAY_WIDTH)
	assert.Equal('▀', row0[0])
	assert.Equal('▄', row0[2])
	assert.Equal('█', row0[4])
	assert.Equal(' ', row0[1])

	row1 := []rune(lines[1])
	assert.Equal('▀', row1[0])
}

func TestTerminalPresent(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	tm := NewTerminal(strings.NewReader(""), output, testKeymap(t))

	var frame cpu.Frame
	tm.Present(frame)
	assert.True(strings.HasPrefix(output.String(), ansiClear+ansiHome))

	output.Reset()
	tm.Present(frame)
	assert.True(strings.HasPrefix(output.String(), ansiHome))
	assert.False(strings.Contains(output.String(), ansiClear))
}

func TestTerminalTone(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	tm := NewTerminal(strings.NewReader(""), output, testKeymap(t))

	tm.Tone(true)
	tm.Tone(false)
	assert.Equal(ansiBell, output.String())
}

func TestTerminalScan(t *testing.T) {
	assert := assert.New(t)

	tm := NewTerminal(strings.NewReader("1Vp"), &bytes.Buffer{}, testKeymap(t))
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.Keypad.Now = func() time.Time { return now }

	<-tm.Scan(context.Background())

	keys := tm.Keys()
	assert.Equal(cpu.Keys(0).With(0x1).With(0xf), keys)

	now = now.Add(TERMINAL_HOLD)
	assert.Equal(cpu.Keys(0), tm.Keys())
}

func TestTerminalScanQuit(t *testing.T) {
	assert := assert.New(t)

	tm := NewTerminal(strings.NewReader("q\x03w"), &bytes.Buffer{}, testKeymap(t))

	<-tm.Scan(context.Background())

	keys := tm.Keys()
	assert.True(keys.Pressed(0x4))
	assert.False(keys.Pressed(0x5))
}

func TestTerminalMakeRaw(t *testing.T) {
	assert := assert.New(t)

	tm := NewTerminal(strings.NewReader(""), &bytes.Buffer{}, testKeymap(t))
	_, err := tm.MakeRaw()
	assert.ErrorIs(err, ErrNotTty)
}
