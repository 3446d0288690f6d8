package main

import (
	"context"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/io"
)

const WINDOW_SCALE = 10

var _ebiten_keys = map[rune]ebiten.Key{
	'0': ebiten.KeyDigit0, '1': ebiten.KeyDigit1, '2': ebiten.KeyDigit2,
	'3': ebiten.KeyDigit3, '4': ebiten.KeyDigit4, '5': ebiten.KeyDigit5,
	'6': ebiten.KeyDigit6, '7': ebiten.KeyDigit7, '8': ebiten.KeyDigit8,
	'9': ebiten.KeyDigit9,
	'a': ebiten.KeyA, 'b': ebiten.KeyB, 'c': ebiten.KeyC, 'd': ebiten.KeyD,
	'e': ebiten.KeyE, 'f': ebiten.KeyF, 'g': ebiten.KeyG, 'h': ebiten.KeyH,
	'i': ebiten.KeyI, 'j': ebiten.KeyJ, 'k': ebiten.KeyK, 'l': ebiten.KeyL,
	'm': ebiten.KeyM, 'n': ebiten.KeyN, 'o': ebiten.KeyO, 'p': ebiten.KeyP,
	'q': ebiten.KeyQ, 'r': ebiten.KeyR, 's': ebiten.KeyS, 't': ebiten.KeyT,
	'u': ebiten.KeyU, 'v': ebiten.KeyV, 'w': ebiten.KeyW, 'x': ebiten.KeyX,
	'y': ebiten.KeyY, 'z': ebiten.KeyZ,
}

// Window is an ebiten game that shows the display and reads the keypad.
// The emulator runs on its own goroutine; closing the window or pressing
// Escape cancels it.
type Window struct {
	io.Keypad

	ctx    context.Context
	cancel context.CancelFunc
	keys   map[ebiten.Key]uint8
	frame  atomic.Pointer[cpu.Frame]
	pixels []byte
}

// NewWindow creates a window host for the keymap.
func NewWindow(ctx context.Context, cancel context.CancelFunc, keymap io.Keymap) (win *Window) {
	win = &Window{
		ctx:    ctx,
		cancel: cancel,
		keys:   map[ebiten.Key]uint8{},
		pixels: make([]byte, cpu.DISPLAY_WIDTH*cpu.DISPLAY_HEIGHT*4),
	}

	for ch, key := range keymap {
		ek, ok := _ebiten_keys[ch]
		if ok {
			win.keys[ek] = key
		}
	}

	return
}

// Present stores the frame for the next Draw.
func (win *Window) Present(frame cpu.Frame) {
	win.frame.Store(&frame)
}

func (win *Window) Update() error {
	if win.ctx.Err() != nil || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		win.cancel()
		return ebiten.Termination
	}

	var keys cpu.Keys
	for ek, key := range win.keys {
		if ebiten.IsKeyPressed(ek) {
			keys = keys.With(key)
		}
	}
	win.Keypad.Set(keys)

	return nil
}

func (win *Window) Draw(screen *ebiten.Image) {
	frame := win.frame.Load()
	if frame == nil {
		return
	}

	for y := range cpu.DISPLAY_HEIGHT {
		for x := range cpu.DISPLAY_WIDTH {
			var level byte
			if frame.Pixel(x, y) {
				level = 0xff
			}
			offset := (y*cpu.DISPLAY_WIDTH + x) * 4
			win.pixels[offset+0] = level
			win.pixels[offset+1] = level
			win.pixels[offset+2] = level
			win.pixels[offset+3] = 0xff
		}
	}

	screen.WritePixels(win.pixels)
}

func (win *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.DISPLAY_WIDTH, cpu.DISPLAY_HEIGHT
}

// Run shows the window until it is closed.
func (win *Window) Run(title string) (err error) {
	ebiten.SetWindowSize(cpu.DISPLAY_WIDTH*WINDOW_SCALE, cpu.DISPLAY_HEIGHT*WINDOW_SCALE)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err = ebiten.RunGame(win)
	win.cancel()

	return
}
