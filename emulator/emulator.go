// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
)

// KEY_WAIT_IDLE is how long the run loop sleeps per cycle while stalled in
// Fx0A with no instruction rate set.
const KEY_WAIT_IDLE = time.Millisecond

var _emulator_defines = map[string]string{
	"TIMER_RATE": fmt.Sprintf("%d", cpu.TIMER_RATE),
	"KEY_COUNT":  fmt.Sprintf("%d", cpu.KEY_COUNT),
}

// Display receives the framebuffer.
type Display interface {
	Present(frame cpu.Frame)
}

// Keypad reports the keys held down.
type Keypad interface {
	Keys() cpu.Keys
}

// Speaker plays the buzzer tone.
type Speaker interface {
	Tone(on bool)
}

// Emulator state. CPU + host collaborators.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Program listing, if the ROM was assembled.
	Rom      []uint8      // ROM image loaded at reset.
	Font     []uint8      // Replacement font, if set.
	Config   Config       // Settings.

	Display Display // Framebuffer sink, may be nil.
	Keypad  Keypad  // Keypad source, may be nil.
	Speaker Speaker // Buzzer sink, may be nil.
	Clock   Clock   // Wall clock.

	start     time.Time // Start of the throttling window.
	cycles    int       // Cycles since start.
	lastFrame time.Time // Time of the last presentation.
	tone      bool      // Last tone state sent to the speaker.
}

// NewEmulator creates a new emulator.
func NewEmulator(config Config) (emu *Emulator) {
	emu = &Emulator{
		Cpu:    cpu.NewCpu(),
		Config: config,
		Clock:  SystemClock{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the machine and load the ROM.
// If Rom is empty and Program is set, the assembled program is loaded.
func (emu *Emulator) Reset() (err error) {
	quirks, err := emu.Config.Quirks()
	if err != nil {
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Cpu.Quirks = quirks
	if emu.Config.Seed != 0 {
		emu.Cpu.Seed(emu.Config.Seed)
	}

	if len(emu.Font) != 0 {
		err = emu.Cpu.LoadFont(emu.Font)
		if err != nil {
			return
		}
	}

	rom := emu.Rom
	if len(rom) == 0 && emu.Program != nil {
		rom = emu.Program.Binary()
	}
	emu.Cpu.LoadProgram(rom)

	emu.start = time.Time{}
	emu.cycles = 0
	emu.lastFrame = time.Time{}
	emu.setTone(false)

	return
}

// LineNo returns the source line for an address, or 0 if unknown.
func (emu *Emulator) LineNo(addr uint16) int {
	if emu.Program == nil {
		return 0
	}
	return emu.Program.LineNo(addr)
}

func (emu *Emulator) setTone(on bool) {
	if on == emu.tone {
		return
	}
	emu.tone = on
	if emu.Speaker != nil {
		emu.Speaker.Tone(on)
	}
}

// present sends the frame to the display if it changed and a frame is due.
func (emu *Emulator) present(now time.Time) {
	if emu.Display == nil || !emu.Cpu.Display.Dirty {
		return
	}

	if emu.Config.FrameRate > 0 && !emu.lastFrame.IsZero() {
		period := time.Second / time.Duration(emu.Config.FrameRate)
		if now.Sub(emu.lastFrame) < period {
			return
		}
	}

	emu.Display.Present(emu.Cpu.Display.Snapshot())
	emu.Cpu.Display.Dirty = false
	emu.lastFrame = now
}

// Tick performs a single machine cycle.
// - Samples the keypad.
// - Brings the timers up to date.
// - Executes one instruction.
// - Presents the display and updates the buzzer.
//
// A fatal error presents any pending frame before returning.
func (emu *Emulator) Tick() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	addr := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{Addr: addr, LineNo: emu.LineNo(addr), Err: err}
		}
	}()

	now := emu.Clock.Now()

	if emu.Keypad != nil {
		emu.Cpu.Keys = emu.Keypad.Keys()
	}
	emu.Cpu.Timers.Update(now)

	err = emu.Cpu.Tick()
	if err != nil {
		// Show whatever was drawn before the fault.
		emu.lastFrame = time.Time{}
		emu.present(now)
		return
	}

	emu.present(now)
	emu.setTone(emu.Cpu.Timers.Sound > 0)

	return
}

// throttle sleeps until the next cycle is due.
func (emu *Emulator) throttle() {
	ips := emu.Config.InstructionsPerSecond
	if ips == 0 {
		if emu.Cpu.Waiting {
			emu.Clock.Sleep(KEY_WAIT_IDLE)
		}
		return
	}

	now := emu.Clock.Now()
	if emu.start.IsZero() {
		emu.start = now
		emu.cycles = 0
	}

	emu.cycles++
	due := emu.start.Add(time.Duration(emu.cycles) * time.Second / time.Duration(ips))
	wait := due.Sub(now)
	if wait > 0 {
		emu.Clock.Sleep(wait)
	} else if wait < -time.Second {
		// Too far behind; restart the window rather than racing to catch up.
		emu.start = time.Time{}
	}
}

// Run cycles the machine until the context is cancelled or a fatal error
// occurs. The buzzer is silenced on return.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	defer emu.setTone(false)

	if emu.Verbose {
		log.Printf("emulator: run at %d ips, %d fps", emu.Config.InstructionsPerSecond, emu.Config.FrameRate)
	}

	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		default:
		}

		err = emu.Tick()
		if err != nil {
			return
		}

		emu.throttle()
	}
}
