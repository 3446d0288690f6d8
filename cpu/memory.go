package cpu

// Memory map of the CHIP-8 address space.
const (
	MEMORY_SIZE   = 0x1000 // 4KiB of addressable memory.
	MEMORY_LAST   = 0xFFF  // Highest valid address.
	FONT_BASE     = 0x050  // First byte of the hex digit glyphs.
	FONT_GLYPH    = 5      // Bytes (rows) per glyph.
	FONT_SIZE     = 16 * FONT_GLYPH
	PROGRAM_START = 0x200 // Load and entry address of programs.
	PROGRAM_LIMIT = MEMORY_SIZE - PROGRAM_START
)

// Memory is the flat CHIP-8 address space.
type Memory [MEMORY_SIZE]uint8

// check verifies that [addr, addr+size) lies inside memory.
func (mem *Memory) check(addr uint32, size uint32) (err error) {
	last := addr + size - 1
	if addr > MEMORY_LAST {
		err = ErrAddress(addr)
		return
	}
	if last > MEMORY_LAST {
		err = ErrAddress(last)
		return
	}
	return
}

// Slice returns the memory range [addr, addr+size), bounds checked.
func (mem *Memory) Slice(addr uint16, size int) (data []uint8, err error) {
	if size == 0 {
		return
	}
	err = mem.check(uint32(addr), uint32(size))
	if err != nil {
		return
	}
	data = mem[addr : int(addr)+size]
	return
}

// Word reads the big-endian 16-bit value at addr.
func (mem *Memory) Word(addr uint16) (word uint16, err error) {
	data, err := mem.Slice(addr, 2)
	if err != nil {
		return
	}
	word = uint16(data[0])<<8 | uint16(data[1])
	return
}

// Load copies data into memory at addr, silently truncating to the end of
// memory. Returns the number of bytes copied.
func (mem *Memory) Load(addr uint16, data []uint8) int {
	if int(addr) >= len(mem) {
		return 0
	}
	return copy(mem[addr:], data)
}

// Reset zero-fills memory.
func (mem *Memory) Reset() {
	clear(mem[:])
}
