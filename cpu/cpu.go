package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"
)

const (
	REGISTER_COUNT = 16  // V0 to VF
	REG_FLAG       = 0xf // VF, the carry, borrow and collision flag.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":    fmt.Sprintf("0x%x", MEMORY_SIZE),
	"PROGRAM_START":  fmt.Sprintf("0x%x", PROGRAM_START),
	"FONT_BASE":      fmt.Sprintf("0x%x", FONT_BASE),
	"FONT_GLYPH":     fmt.Sprintf("%d", FONT_GLYPH),
	"DISPLAY_WIDTH":  fmt.Sprintf("%d", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%d", DISPLAY_HEIGHT),
	"STACK_LIMIT":    fmt.Sprintf("%d", STACK_LIMIT),
}

// KeyWait selects how the wait-for-key instruction (Fx0A) behaves.
//
//go:generate go tool stringer -linecomment -type=KeyWait
type KeyWait int

const (
	KEY_WAIT_SUSPEND = KeyWait(0) // suspend
	KEY_WAIT_NOOP    = KeyWait(1) // noop
)

// Quirks selects between CHIP-8 dialect behaviours.
type Quirks struct {
	ShiftVx bool    // 8xy6/8xyE shift Vx in place instead of Vy.
	KeyWait KeyWait // Fx0A behaviour.
}

// Cpu is the complete CHIP-8 machine state.
type Cpu struct {
	Verbose bool   // Set to enable verbose logging.
	Quirks  Quirks // Dialect selection.

	Memory  Memory               // Address space.
	V       [REGISTER_COUNT]uint8 // General purpose registers.
	I       uint16               // Index register.
	Pc      uint16               // Program counter.
	Stack   Stack                // Return addresses.
	Display Display              // Framebuffer.
	Timers  Timers               // Delay and sound timers.
	Keys    Keys                 // Keypad snapshot for the current cycle.
	Rand    *rand.Rand           // Source for Cxkk.

	Waiting bool // Stalled in Fx0A.
	Ticks   int  // Instructions executed.
	Unknown int  // Unknown instructions skipped.

	waitKeys Keys // Keypad state when last polled by Fx0A.
}

// NewCpu creates a reset CPU with the default font installed.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	cpu.Reset()

	return
}

// Seed makes the random number source deterministic.
func (cpu *Cpu) Seed(seed uint64) {
	cpu.Rand = rand.New(rand.NewPCG(seed, seed))
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Zero-fills memory and installs the default font.
// - Clears the registers, stack, display and timers.
// - Zeros statistics counters.
// - Sets the program counter to PROGRAM_START.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	cpu.Memory.Load(FONT_BASE, DefaultFont[:])

	clear(cpu.V[:])
	cpu.I = 0
	cpu.Pc = PROGRAM_START
	cpu.Stack.Reset()
	cpu.Display.Clear()
	cpu.Timers.Reset()
	cpu.Keys = 0

	cpu.Waiting = false
	cpu.waitKeys = 0
	cpu.Ticks = 0
	cpu.Unknown = 0
}

// LoadFont replaces the font glyphs. The font must be exactly FONT_SIZE bytes.
func (cpu *Cpu) LoadFont(font []uint8) (err error) {
	if len(font) != FONT_SIZE {
		err = ErrFontSize
		return
	}

	cpu.Memory.Load(FONT_BASE, font)
	return
}

// LoadProgram copies a program image to PROGRAM_START. Anything beyond the
// end of memory is dropped. Returns the number of bytes loaded.
func (cpu *Cpu) LoadProgram(program []uint8) (n int) {
	n = cpu.Memory.Load(PROGRAM_START, program)
	if cpu.Verbose {
		log.Printf("cpu: loaded %d of %d bytes", n, len(program))
	}
	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("%5s: %03X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("%5s: %03X\n", "i", cpu.I)
	for n, val := range cpu.V {
		text += fmt.Sprintf("%5s: %02X\n", fmt.Sprintf("v%x", n), val)
	}

	strval := "---"
	if addr, ok := cpu.Stack.Peek(); ok {
		strval = fmt.Sprintf("%03X", addr)
	}
	text += fmt.Sprintf("%5s: %v (%d)\n", "stack", strval, cpu.Stack.Depth())
	text += fmt.Sprintf("%5s: %02X\n", "dt", cpu.Timers.Delay)
	text += fmt.Sprintf("%5s: %02X\n", "st", cpu.Timers.Sound)
	text += fmt.Sprintf("%5s: %v\n", "keys", cpu.Keys)

	return
}

// Fetch reads the instruction at the program counter and advances the
// program counter past it.
func (cpu *Cpu) Fetch() (op Opcode, err error) {
	word, err := cpu.Memory.Word(cpu.Pc)
	if err != nil {
		return
	}

	op = Opcode(word)
	cpu.Pc += 2

	return
}

// Tick executes a single fetch-decode-execute cycle.
// Unknown instructions are logged and skipped. Any other error is fatal to
// the program.
func (cpu *Cpu) Tick() (err error) {
	op, err := cpu.Fetch()
	if err != nil {
		return
	}

	cpu.Ticks++

	err = cpu.Execute(op)
	if errors.Is(err, ErrOpcodeUnknown) {
		log.Printf("cpu: %03x: %v", cpu.Pc-2, err)
		cpu.Unknown++
		err = nil
	}

	return
}

// Execute executes a single fetched instruction. The program counter must
// already point past the instruction.
func (cpu *Cpu) Execute(op Opcode) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(op), err)
		}
	}()

	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc-2, op)
	}

	err = opTable[op.Decode()](cpu, op)

	return
}
