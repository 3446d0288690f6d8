package io

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestReadRom(t *testing.T) {
	assert := assert.New(t)

	rom, err := ReadRom(bytes.NewReader([]byte{0x00, 0xe0, 0x12, 0x00}))
	assert.NoError(err)
	assert.Equal([]uint8{0x00, 0xe0, 0x12, 0x00}, rom)

	rom, err = ReadRom(bytes.NewReader(make([]byte, cpu.PROGRAM_LIMIT)))
	assert.NoError(err)
	assert.Len(rom, cpu.PROGRAM_LIMIT)

	rom, err = ReadRom(bytes.NewReader(make([]byte, cpu.PROGRAM_LIMIT+1)))
	assert.ErrorIs(err, ErrRomSize)
	assert.Nil(rom)

	_, err = ReadRom(bytes.NewReader(nil))
	assert.ErrorIs(err, ErrRomEmpty)
}

func TestReadFont(t *testing.T) {
	assert := assert.New(t)

	font, err := ReadFont(bytes.NewReader(cpu.DefaultFont[:]))
	assert.NoError(err)
	assert.Equal(cpu.DefaultFont[:], font)

	_, err = ReadFont(bytes.NewReader(cpu.DefaultFont[:10]))
	assert.ErrorIs(err, cpu.ErrFontSize)

	_, err = ReadFont(bytes.NewReader(make([]byte, cpu.FONT_SIZE+1)))
	assert.ErrorIs(err, cpu.ErrFontSize)
}

func TestOpenRom(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		"pong.ch8":  &fstest.MapFile{Data: []byte{0x6a, 0x02}},
		"small.fnt": &fstest.MapFile{Data: []byte{0xf0}},
	}

	rom, err := OpenRom(fsys, "pong.ch8")
	assert.NoError(err)
	assert.Equal([]uint8{0x6a, 0x02}, rom)

	_, err = OpenRom(fsys, "missing.ch8")
	assert.Error(err)

	_, err = OpenFont(fsys, "small.fnt")
	assert.ErrorIs(err, cpu.ErrFontSize)
}
