package io

import (
	"io"
	"io/fs"

	"github.com/ezrec/chip8/cpu"
)

// ReadRom reads a program image. The image must fit between PROGRAM_START
// and the end of memory.
func ReadRom(input io.Reader) (rom []uint8, err error) {
	rom, err = io.ReadAll(io.LimitReader(input, cpu.PROGRAM_LIMIT+1))
	if err != nil {
		return
	}

	switch {
	case len(rom) == 0:
		err = ErrRomEmpty
	case len(rom) > cpu.PROGRAM_LIMIT:
		err = ErrRomSize
	}
	if err != nil {
		rom = nil
	}

	return
}

// ReadFont reads a replacement font of exactly FONT_SIZE bytes.
func ReadFont(input io.Reader) (font []uint8, err error) {
	font, err = io.ReadAll(io.LimitReader(input, cpu.FONT_SIZE+1))
	if err != nil {
		return
	}

	if len(font) != cpu.FONT_SIZE {
		font = nil
		err = cpu.ErrFontSize
	}

	return
}

// OpenRom reads a program image from a file system.
func OpenRom(fsys fs.FS, name string) (rom []uint8, err error) {
	file, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	rom, err = ReadRom(file)
	return
}

// OpenFont reads a replacement font from a file system.
func OpenFont(fsys fs.FS, name string) (font []uint8, err error) {
	file, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	font, err = ReadFont(file)
	return
}
