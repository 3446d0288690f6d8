package io

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/ezrec/chip8/cpu"
)

// FrameImage converts a frame to a paletted image, one image pixel per
// display pixel.
func FrameImage(frame cpu.Frame) (img *image.Paletted) {
	palette := color.Palette{color.Black, color.White}
	img = image.NewPaletted(image.Rect(0, 0, cpu.DISPLAY_WIDTH, cpu.DISPLAY_HEIGHT), palette)

	for y := range cpu.DISPLAY_HEIGHT {
		for x := range cpu.DISPLAY_WIDTH {
			if frame.Pixel(x, y) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}

	return
}

// WritePNG encodes a frame as a PNG image, each display pixel scaled to a
// scale by scale square.
func WritePNG(output io.Writer, frame cpu.Frame, scale int) (err error) {
	scale = max(scale, 1)

	src := FrameImage(frame)
	dst := image.NewPaletted(image.Rect(0, 0, cpu.DISPLAY_WIDTH*scale, cpu.DISPLAY_HEIGHT*scale), src.Palette)
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	err = png.Encode(output, dst)
	return
}
