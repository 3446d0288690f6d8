package io

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/chip8/cpu"
)

const (
	TERMINAL_HOLD = 150 * time.Millisecond // Key auto-release delay.

	KEY_CTRL_C = 0x03
	KEY_ESCAPE = 0x1b
)

const (
	ansiHome       = "\x1b[H"
	ansiClear      = "\x1b[2J"
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
	ansiBell       = "\a"
)

// RenderFrame draws a frame as text, two pixel rows per line, using
// half-block characters.
func RenderFrame(frame cpu.Frame) string {
	var sb strings.Builder

	for y := 0; y < cpu.DISPLAY_HEIGHT; y += 2 {
		for x := range cpu.DISPLAY_WIDTH {
			top := frame.Pixel(x, y)
			bottom := frame.Pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	return sb.String()
}

// Terminal is a text console host: it presents frames with ANSI escapes,
// reads the keypad from typed characters, and rings the bell for the buzzer.
type Terminal struct {
	Verbose bool
	Input   io.Reader
	Output  io.Writer
	Keymap  Keymap
	Keypad  Keypad

	mutex   sync.Mutex
	cleared bool
}

// NewTerminal creates a terminal host. Keys auto-release after
// TERMINAL_HOLD, as terminals do not report key releases.
func NewTerminal(input io.Reader, output io.Writer, keymap Keymap) (tm *Terminal) {
	tm = &Terminal{
		Input:  input,
		Output: output,
		Keymap: keymap,
	}
	tm.Keypad.Hold = TERMINAL_HOLD

	return
}

// MakeRaw puts the input terminal into raw mode and hides the cursor.
// The returned function restores the terminal.
func (tm *Terminal) MakeRaw() (restore func(), err error) {
	file, ok := tm.Input.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		err = ErrNotTty
		return
	}

	fd := int(file.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}

	tm.write(ansiHideCursor)

	restore = func() {
		tm.write(ansiShowCursor + "\r\n")
		err := term.Restore(fd, state)
		if err != nil {
			log.Printf("terminal: %v", err)
		}
	}

	return
}

func (tm *Terminal) write(text string) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	_, err := io.WriteString(tm.Output, text)
	if err != nil && tm.Verbose {
		log.Printf("terminal: %v", err)
	}
}

// Present draws the frame at the top of the screen.
func (tm *Terminal) Present(frame cpu.Frame) {
	text := ansiHome + RenderFrame(frame)
	if !tm.cleared {
		text = ansiClear + text
		tm.cleared = true
	}
	tm.write(text)
}

// Tone rings the bell when the buzzer starts.
func (tm *Terminal) Tone(on bool) {
	if on {
		tm.write(ansiBell)
	}
}

// Keys returns a snapshot of the keypad.
func (tm *Terminal) Keys() cpu.Keys {
	return tm.Keypad.Keys()
}

// Scan reads typed characters into the keypad until the input ends, the
// context is done, or Ctrl-C or Escape is typed. The returned channel is
// closed when scanning stops.
func (tm *Terminal) Scan(ctx context.Context) (done <-chan struct{}) {
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		reader := bufio.NewReader(tm.Input)
		for ctx.Err() == nil {
			ch, _, err := reader.ReadRune()
			if err != nil {
				if err != io.EOF && tm.Verbose {
					log.Printf("terminal: %v", err)
				}
				return
			}

			if ch == KEY_CTRL_C || ch == KEY_ESCAPE {
				return
			}

			key, ok := tm.Keymap.Key(ch)
			if !ok {
				continue
			}
			if tm.Verbose {
				log.Printf("terminal: key %X", key)
			}
			tm.Keypad.Press(key)
		}
	}()

	return stopped
}
