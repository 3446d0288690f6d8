package cpu

import (
	"strings"
)

const (
	DISPLAY_WIDTH  = 64 // Pixel columns.
	DISPLAY_HEIGHT = 32 // Pixel rows.
	SPRITE_WIDTH   = 8  // Pixels per sprite row.
	SPRITE_LIMIT   = 15 // Maximum sprite rows.
)

// Frame is a snapshot of the display, one uint64 per row.
// Bit 63 of a row is column 0.
type Frame [DISPLAY_HEIGHT]uint64

// Pixel reports whether the pixel at column x, row y is lit.
// Coordinates outside the frame are never lit.
func (fr Frame) Pixel(x, y int) bool {
	if x < 0 || x >= DISPLAY_WIDTH || y < 0 || y >= DISPLAY_HEIGHT {
		return false
	}
	return (fr[y]>>(DISPLAY_WIDTH-1-x))&1 != 0
}

// Lit returns the number of lit pixels.
func (fr Frame) Lit() (count int) {
	for _, row := range fr {
		for ; row != 0; row &= row - 1 {
			count++
		}
	}
	return
}

// String renders the frame as rows of '#' and '.'.
func (fr Frame) String() string {
	var sb strings.Builder
	sb.Grow((DISPLAY_WIDTH + 1) * DISPLAY_HEIGHT)
	for y := range DISPLAY_HEIGHT {
		for x := range DISPLAY_WIDTH {
			if fr.Pixel(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Display is the monochrome framebuffer.
type Display struct {
	frame Frame
	Dirty bool // Set on every change, cleared by the presenter.
}

// Clear turns off all pixels.
func (d *Display) Clear() {
	clear(d.frame[:])
	d.Dirty = true
}

// Snapshot returns a copy of the current frame.
func (d *Display) Snapshot() Frame {
	return d.frame
}

// Pixel reports whether the pixel at column x, row y is lit.
func (d *Display) Pixel(x, y int) bool {
	return d.frame.Pixel(x, y)
}

// Draw XORs the sprite rows onto the display with the top left corner at
// column x, row y. Rows and columns falling outside the display are clipped.
// Returns true if any lit pixel was turned off.
func (d *Display) Draw(x, y int, sprite []uint8) (collision bool) {
	if len(sprite) > SPRITE_LIMIT {
		sprite = sprite[:SPRITE_LIMIT]
	}

	for r, bits := range sprite {
		row := y + r
		if row < 0 || row >= DISPLAY_HEIGHT || bits == 0 {
			continue
		}

		// Place the sprite byte with bit 7 at column x.
		var mask uint64
		shift := DISPLAY_WIDTH - SPRITE_WIDTH - x
		switch {
		case shift >= 0 && shift < DISPLAY_WIDTH:
			mask = uint64(bits) << shift
		case shift < 0 && shift > -SPRITE_WIDTH:
			mask = uint64(bits) >> -shift
		default:
			continue
		}

		if d.frame[row]&mask != 0 {
			collision = true
		}
		d.frame[row] ^= mask
	}

	d.Dirty = true
	return
}
