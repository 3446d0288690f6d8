package cpu

import (
	"fmt"
)

// Opcode is a single 16-bit CHIP-8 instruction.
type Opcode uint16

// Nibbles splits the instruction into its four 4-bit fields, most
// significant first.
func (op Opcode) Nibbles() (n0, n1, n2, n3 uint8) {
	n0 = uint8(op>>12) & 0xf
	n1 = uint8(op>>8) & 0xf
	n2 = uint8(op>>4) & 0xf
	n3 = uint8(op>>0) & 0xf
	return
}

// X returns the first register operand.
func (op Opcode) X() uint8 { return uint8(op>>8) & 0xf }

// Y returns the second register operand.
func (op Opcode) Y() uint8 { return uint8(op>>4) & 0xf }

// N returns the low nibble.
func (op Opcode) N() uint8 { return uint8(op) & 0xf }

// KK returns the low byte.
func (op Opcode) KK() uint8 { return uint8(op) }

// NNN returns the 12-bit address field.
func (op Opcode) NNN() uint16 { return uint16(op) & 0xfff }

// Op is a decoded operation.
//
//go:generate go tool stringer -linecomment -type=Op
type Op int

const (
	OP_UNKNOWN     = Op(iota) // ???
	OP_NOP                    // nop
	OP_CLS                    // cls
	OP_RET                    // ret
	OP_JP                     // jp
	OP_CALL                   // call
	OP_SE_BYTE                // se
	OP_SNE_BYTE               // sne
	OP_SE_REG                 // se
	OP_LD_BYTE                // ld
	OP_ADD_BYTE               // add
	OP_LD_REG                 // ld
	OP_OR                     // or
	OP_AND                    // and
	OP_XOR                    // xor
	OP_ADD_REG                // add
	OP_SUB                    // sub
	OP_SHR                    // shr
	OP_SUBN                   // subn
	OP_SHL                    // shl
	OP_SNE_REG                // sne
	OP_LD_I                   // ld
	OP_JP_V0                  // jp
	OP_RND                    // rnd
	OP_DRW                    // drw
	OP_SKP                    // skp
	OP_SKNP                   // sknp
	OP_LD_VX_DT               // ld
	OP_LD_VX_K                // ld
	OP_LD_DT                  // ld
	OP_LD_ST                  // ld
	OP_ADD_I                  // add
	OP_LD_F                   // ld
	OP_LD_B                   // ld
	OP_LD_MEM_REG             // ld
	OP_LD_REG_MEM             // ld

	// Number of operations.
	OP_COUNT
)

// Decode matches the instruction against the opcode table.
func (op Opcode) Decode() Op {
	n0, _, n2, n3 := op.Nibbles()

	switch n0 {
	case 0x0:
		switch {
		case op == 0x0000:
			return OP_NOP
		case op == 0x00E0:
			return OP_CLS
		case op == 0x00EE:
			return OP_RET
		}
		return OP_UNKNOWN
	case 0x1:
		return OP_JP
	case 0x2:
		return OP_CALL
	case 0x3:
		return OP_SE_BYTE
	case 0x4:
		return OP_SNE_BYTE
	case 0x5:
		if n3 == 0 {
			return OP_SE_REG
		}
	case 0x6:
		return OP_LD_BYTE
	case 0x7:
		return OP_ADD_BYTE
	case 0x8:
		switch n3 {
		case 0x0:
			return OP_LD_REG
		case 0x1:
			return OP_OR
		case 0x2:
			return OP_AND
		case 0x3:
			return OP_XOR
		case 0x4:
			return OP_ADD_REG
		case 0x5:
			return OP_SUB
		case 0x6:
			return OP_SHR
		case 0x7:
			return OP_SUBN
		case 0xE:
			return OP_SHL
		}
	case 0x9:
		if n3 == 0 {
			return OP_SNE_REG
		}
	case 0xA:
		return OP_LD_I
	case 0xB:
		return OP_JP_V0
	case 0xC:
		return OP_RND
	case 0xD:
		return OP_DRW
	case 0xE:
		switch op.KK() {
		case 0x9E:
			return OP_SKP
		case 0xA1:
			return OP_SKNP
		}
	case 0xF:
		switch uint8(n2<<4 | n3) {
		case 0x07:
			return OP_LD_VX_DT
		case 0x0A:
			return OP_LD_VX_K
		case 0x15:
			return OP_LD_DT
		case 0x18:
			return OP_LD_ST
		case 0x1E:
			return OP_ADD_I
		case 0x29:
			return OP_LD_F
		case 0x33:
			return OP_LD_B
		case 0x55:
			return OP_LD_MEM_REG
		case 0x65:
			return OP_LD_REG_MEM
		}
	}

	return OP_UNKNOWN
}

// String disassembles the instruction.
func (op Opcode) String() string {
	o := op.Decode()
	x, y := op.X(), op.Y()

	switch o {
	case OP_NOP, OP_CLS, OP_RET:
		return o.String()
	case OP_JP, OP_CALL:
		return fmt.Sprintf("%v 0x%03x", o, op.NNN())
	case OP_JP_V0:
		return fmt.Sprintf("%v v0 0x%03x", o, op.NNN())
	case OP_SE_BYTE, OP_SNE_BYTE, OP_LD_BYTE, OP_ADD_BYTE, OP_RND:
		return fmt.Sprintf("%v v%x 0x%02x", o, x, op.KK())
	case OP_SE_REG, OP_SNE_REG, OP_LD_REG, OP_OR, OP_AND, OP_XOR,
		OP_ADD_REG, OP_SUB, OP_SHR, OP_SUBN, OP_SHL:
		return fmt.Sprintf("%v v%x v%x", o, x, y)
	case OP_LD_I:
		return fmt.Sprintf("%v i 0x%03x", o, op.NNN())
	case OP_DRW:
		return fmt.Sprintf("%v v%x v%x %d", o, x, y, op.N())
	case OP_SKP, OP_SKNP:
		return fmt.Sprintf("%v v%x", o, x)
	case OP_LD_VX_DT:
		return fmt.Sprintf("%v v%x dt", o, x)
	case OP_LD_VX_K:
		return fmt.Sprintf("%v v%x k", o, x)
	case OP_LD_DT:
		return fmt.Sprintf("%v dt v%x", o, x)
	case OP_LD_ST:
		return fmt.Sprintf("%v st v%x", o, x)
	case OP_ADD_I:
		return fmt.Sprintf("%v i v%x", o, x)
	case OP_LD_F:
		return fmt.Sprintf("%v f v%x", o, x)
	case OP_LD_B:
		return fmt.Sprintf("%v b v%x", o, x)
	case OP_LD_MEM_REG:
		return fmt.Sprintf("%v [i] v%x", o, x)
	case OP_LD_REG_MEM:
		return fmt.Sprintf("%v v%x [i]", o, x)
	}

	return fmt.Sprintf(".word 0x%04x", uint16(op))
}
