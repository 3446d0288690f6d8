package cpu

import (
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// assemble parses the program lines with the CPU defines predefined.
func assemble(t *testing.T, program ...string) (prog *Program, err error) {
	asm := &Assembler{}
	for key, value := range maps.All(_cpu_defines) {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	return
}

func assembleCodes(t *testing.T, program ...string) (codes []Opcode) {
	prog, err := assemble(t, program...)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	rom := prog.Binary()
	for n := 0; n+1 < len(rom); n += 2 {
		codes = append(codes, Opcode(uint16(rom[n])<<8|uint16(rom[n+1])))
	}
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("PROGRAM_START", "0x200")

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Statements))
	assert.Empty(prog.Binary())

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0x200", asm.Equate["PROGRAM_START"])
}

func TestAssemblerMnemonics(t *testing.T) {
	program := []string{
		"nop",
		"cls",
		"ret",
		"jp 0x234",
		"call 0x345",
		"se v1 0x22",
		"se v1 v2",
		"sne va 0x33",
		"sne v1 v2",
		"ld vf 1",
		"ld v3 v4",
		"ld i 0x300",
		"ld v2 dt",
		"ld v2 k",
		"ld dt v2",
		"ld st v2",
		"ld f v2",
		"ld b v2",
		"ld [i] v2",
		"ld v2 [i]",
		"add v3 2",
		"add v3 v4",
		"add i v2",
		"or v3 v4",
		"and v3 v4",
		"xor v3 v4",
		"sub v3 v4",
		"subn v3 v4",
		"shr v3 v4",
		"shl v3 v4",
		"shr v5",
		"shl v5",
		"jp v0 0x300",
		"rnd v2 0x0f",
		"drw v0 v1 5",
		"skp v2",
		"sknp v2",
		"LD V1, 0x10",
	}

	expected := []Opcode{
		0x0000, 0x00E0, 0x00EE, 0x1234, 0x2345,
		0x3122, 0x5120, 0x4a33, 0x9120,
		0x6f01, 0x8340, 0xA300,
		0xF207, 0xF20A, 0xF215, 0xF218, 0xF229, 0xF233, 0xF255, 0xF265,
		0x7302, 0x8344, 0xF21E,
		0x8341, 0x8342, 0x8343, 0x8345, 0x8347, 0x8346, 0x834E,
		0x8556, 0x855E,
		0xB300, 0xC20F, 0xD015, 0xE29E, 0xE2A1,
		0x6110,
	}

	codes := assembleCodes(t, program...)
	assert.Equal(t, expected, codes)

	// Disassembly reassembles to the same instructions.
	var listing []string
	for _, code := range codes {
		listing = append(listing, code.String())
	}
	assert.Equal(t, expected, assembleCodes(t, listing...))
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		".byte 0xf0 0x90, 255",
		".word 0x1234",
		".byte -1 'A' '\\n'",
	)
	assert.NoError(err)
	assert.Equal([]uint8{0xf0, 0x90, 0xff, 0x12, 0x34, 0xff, 'A', '\n'}, prog.Binary())

	for _, st := range prog.Statements {
		assert.False(st.Code)
	}
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	codes := assembleCodes(t,
		"start: ld i sprite",
		"       call draw",
		"       jp start",
		"draw:  drw v0 v1 1 ; draw it",
		"       ret",
		"       jp v0 table",
		"table:",
		"sprite: .byte 0x80",
	)

	assert.Equal(Opcode(0xA20C), codes[0])
	assert.Equal(Opcode(0x2206), codes[1])
	assert.Equal(Opcode(0x1200), codes[2])
	assert.Equal(Opcode(0xD011), codes[3])
	assert.Equal(Opcode(0x00EE), codes[4])
	assert.Equal(Opcode(0xB20C), codes[5])
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	codes := assembleCodes(t,
		".equ SPEED 4",
		".equ PLAYER v3",
		"ld PLAYER SPEED",
		"ld i $(FONT_BASE + FONT_GLYPH * 2)",
		"ld v0 '0'",
		"ld v1 $(LINENO)",
		"add v2 -1",
	)

	assert.Equal([]Opcode{0x6304, 0xA05A, 0x6030, 0x6106, 0x72ff}, codes)
}

func TestAssemblerExpressionLabel(t *testing.T) {
	assert := assert.New(t)

	codes := assembleCodes(t,
		"here: nop",
		"jp $(here + 4)",
		"ld i $(here)",
	)

	assert.Equal([]Opcode{0x0000, 0x1204, 0xA200}, codes)

	// Labels are only visible to expressions once defined.
	_, err := assemble(t, "jp $(later)", "later: nop")
	assert.Error(err)
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	codes := assembleCodes(t,
		".macro setxy x y",
		"ld v0 x",
		"ld v1 y",
		".endm",
		".macro spin",
		"@loop: jp @loop",
		".endm",
		"setxy 3 4",
		"spin",
		"spin",
	)

	assert.Equal([]Opcode{0x6003, 0x6104, 0x1204, 0x1206}, codes)
}

func TestAssemblerErrors(t *testing.T) {
	tests := []struct {
		name   string
		source []string
		err    error
		lineno int
	}{
		{"invalid", []string{"nop", "frob v0"}, ErrInstructionInvalid, 2},
		{"register", []string{"ld vg 1"}, ErrRegisterInvalid, 1},
		{"range", []string{"ld v0 256"}, ErrValueRange, 1},
		{"range-addr", []string{"jp 0x1000"}, ErrValueRange, 1},
		{"range-nibble", []string{"drw v0 v1 16"}, ErrValueRange, 1},
		{"missing", []string{"se v1"}, ErrOpcodeValueMissing, 1},
		{"extra", []string{"cls v1"}, ErrOpcodeExtraArgs, 1},
		{"label-dup", []string{"a: nop", "a: nop"}, ErrLabelDuplicate, 2},
		{"label-missing", []string{"nop", "nop", "jp nowhere"}, ErrLabelMissing("nowhere"), 3},
		{"equ-dup", []string{".equ A 1", ".equ A 2"}, ErrEquateDuplicate, 2},
		{"equ-syntax", []string{".equ A"}, ErrEquateSyntax, 1},
		{"macro-nest", []string{".macro a", ".macro b"}, ErrMacroNesting, 2},
		{"macro-lonely", []string{".macro a", "nop"}, ErrMacroLonely, 2},
		{"endm-lonely", []string{".endm"}, ErrMacroLonelyEndm, 1},
		{"macro-args", []string{".macro a x", ".endm", "a"}, ErrMacroSyntax, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := assemble(t, tt.source...)
			assert.ErrorIs(err, tt.err)

			var syntax *ErrSyntax
			if assert.True(errors.As(err, &syntax)) {
				assert.Equal(tt.lineno, syntax.LineNo)
			}
		})
	}
}

func TestAssemblerMacroError(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble(t,
		".macro bad",
		"ld v0 0x100",
		".endm",
		"nop",
		"bad",
	)
	assert.ErrorIs(err, ErrValueRange)

	var macro *ErrMacro
	if assert.True(errors.As(err, &macro)) {
		assert.Equal("bad", macro.Macro)
		assert.Equal(2, macro.Line)
	}
}

func TestAssemblerProgramSize(t *testing.T) {
	assert := assert.New(t)

	var source []string
	for range PROGRAM_LIMIT/2 + 1 {
		source = append(source, "nop")
	}

	_, err := assemble(t, source...)
	assert.ErrorIs(err, ErrProgramSize)

	_, err = assemble(t, source[1:]...)
	assert.NoError(err)
}

func TestAssemblerRun(t *testing.T) {
	assert := assert.New(t)

	// Sum 1 to 10 in v1, then store as BCD at 0x300.
	prog, err := assemble(t,
		"      ld v0 10",
		"      ld v1 0",
		"loop: add v1 v0",
		"      add v0 -1",
		"      se v0 0",
		"      jp loop",
		"      ld i 0x300",
		"      ld b v1",
		"done: jp done",
	)
	if !assert.NoError(err) {
		return
	}

	cpu := NewCpu()
	cpu.LoadProgram(prog.Binary())
	for cpu.Pc != uint16(prog.Statements[len(prog.Statements)-1].Addr) {
		if !assert.NoError(cpu.Tick()) {
			return
		}
		if cpu.Ticks > 1000 {
			t.Fatalf("runaway: %v", cpu)
		}
	}

	assert.Equal(uint8(55), cpu.V[1])
	assert.Equal([]uint8{0, 5, 5}, cpu.Memory[0x300:0x303])
}
