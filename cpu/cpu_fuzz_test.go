package cpu

import (
	"errors"
	"testing"
)

func FuzzCpu(f *testing.F) {
	f.Add([]byte{0x00, 0xE0, 0x12, 0x00}, uint16(0))
	f.Add([]byte{0xA2, 0x00, 0xD0, 0x1F, 0x12, 0x02}, uint16(0))
	f.Add([]byte{0x22, 0x00}, uint16(0))
	f.Add([]byte{0x00, 0xEE}, uint16(0))
	f.Add([]byte{0xF3, 0x0A, 0x12, 0x00}, uint16(0x0010))
	f.Add([]byte{0xAF, 0xF0, 0xFF, 0x55, 0xFF, 0x65, 0xFF, 0x1E}, uint16(0))

	f.Fuzz(func(t *testing.T, program []byte, keys uint16) {
		cpu := NewCpu()
		cpu.Seed(1)
		cpu.LoadProgram(program)

		for n := range 1000 {
			cpu.Keys = Keys(keys)
			if n%2 == 1 {
				cpu.Keys = 0
			}

			err := cpu.Tick()
			if err != nil {
				if !errors.Is(err, ErrMemoryFault) &&
					!errors.Is(err, ErrStackEmpty) &&
					!errors.Is(err, ErrStackFull) {
					t.Fatalf("unexpected error: %v", err)
				}
				break
			}

			if cpu.Stack.Depth() > STACK_LIMIT {
				t.Fatalf("stack depth %d", cpu.Stack.Depth())
			}
		}
	})
}
