// Package cpu implements the CHIP-8 virtual machine and its assembler.
//
// The machine consists of 4KiB of memory, sixteen 8-bit registers (V0-VF,
// where VF doubles as the flag register), a 16-bit index register (I), a
// program counter, a bounded call stack, a 64x32 monochrome display, the
// delay and sound timers, and a snapshot of the 16-key keypad.
//
// Each Tick fetches one 16-bit instruction, advances the program counter,
// decodes the four nibbles into an Op and dispatches it to a handler that
// operates on the Cpu state.
//
// The assembler provides a small macro assembly language for the CHIP-8
// instruction set, supporting labels, equates, macros, data bytes, and
// compile-time expression evaluation.
package cpu
