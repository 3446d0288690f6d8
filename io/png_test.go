package io

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestFrameImage(t *testing.T) {
	assert := assert.New(t)

	var d cpu.Display
	d.Draw(3, 4, []uint8{0x80})

	img := FrameImage(d.Snapshot())
	assert.Equal(cpu.DISPLAY_WIDTH, img.Bounds().Dx())
	assert.Equal(cpu.DISPLAY_HEIGHT, img.Bounds().Dy())
	assert.Equal(uint8(1), img.ColorIndexAt(3, 4))
	assert.Equal(uint8(0), img.ColorIndexAt(4, 4))
}

func TestWritePNG(t *testing.T) {
	assert := assert.New(t)

	var d cpu.Display
	d.Draw(1, 1, []uint8{0x80})

	var buf bytes.Buffer
	err := WritePNG(&buf, d.Snapshot(), 4)
	assert.NoError(err)

	img, err := png.Decode(&buf)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(cpu.DISPLAY_WIDTH*4, img.Bounds().Dx())
	assert.Equal(cpu.DISPLAY_HEIGHT*4, img.Bounds().Dy())

	lit := func(x, y int) bool {
		r, _, _, _ := img.At(x, y).RGBA()
		return r != 0
	}
	assert.True(lit(4, 4))
	assert.True(lit(7, 7))
	assert.False(lit(8, 8))
	assert.False(lit(3, 3))
}
