package cpu

import (
	"iter"
)

// Statement is a line of assembled source with the bytes it produced.
type Statement struct {
	LineNo    int      // Source line number.
	Addr      int      // Load address of the first byte.
	Words     []string // Source words after equate expansion.
	Data      []uint8  // Generated bytes.
	LinkLabel string   // Label whose address is OR'd into the last instruction.
	Code      bool     // Data holds instructions rather than .byte/.word data.
}

// Program is an assembled CHIP-8 program.
type Program struct {
	Statements []Statement
}

// Debug locates the statement covering an address.
type Debug struct {
	*Statement
	Index int // Byte offset of the address within the statement.
}

func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, st := range prog.Statements {
		if int(addr) >= st.Addr && int(addr) < st.Addr+len(st.Data) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(addr) - st.Addr,
			}
			break
		}
	}

	return
}

// LineNo returns the source line for an address, or 0 if unknown.
func (prog *Program) LineNo(addr uint16) int {
	dbg := prog.Debug(addr)
	if dbg.Statement == nil {
		return 0
	}
	return dbg.LineNo
}

// Binary returns the flat ROM image, starting at PROGRAM_START.
func (prog *Program) Binary() (rom []uint8) {
	for _, st := range prog.Statements {
		offset := st.Addr - PROGRAM_START
		for len(rom) < offset {
			rom = append(rom, 0)
		}
		rom = append(rom[:offset], st.Data...)
	}

	return
}

// Codes iterates over the instructions of the program by address.
func (prog *Program) Codes() iter.Seq2[uint16, Opcode] {
	return func(yield func(addr uint16, op Opcode) bool) {
		for _, st := range prog.Statements {
			if !st.Code {
				continue
			}
			for n := 0; n+1 < len(st.Data); n += 2 {
				op := Opcode(uint16(st.Data[n])<<8 | uint16(st.Data[n+1]))
				if !yield(uint16(st.Addr+n), op) {
					return
				}
			}
		}
	}
}
