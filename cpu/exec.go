package cpu

// opTable maps each decoded operation to its handler.
var opTable = [OP_COUNT]func(cpu *Cpu, op Opcode) error{
	OP_UNKNOWN:    opUnknown,
	OP_NOP:        opNop,
	OP_CLS:        opCls,
	OP_RET:        opRet,
	OP_JP:         opJp,
	OP_CALL:       opCall,
	OP_SE_BYTE:    opSeByte,
	OP_SNE_BYTE:   opSneByte,
	OP_SE_REG:     opSeReg,
	OP_LD_BYTE:    opLdByte,
	OP_ADD_BYTE:   opAddByte,
	OP_LD_REG:     opAlu,
	OP_OR:         opAlu,
	OP_AND:        opAlu,
	OP_XOR:        opAlu,
	OP_ADD_REG:    opAlu,
	OP_SUB:        opAlu,
	OP_SHR:        opAlu,
	OP_SUBN:       opAlu,
	OP_SHL:        opAlu,
	OP_SNE_REG:    opSneReg,
	OP_LD_I:       opLdI,
	OP_JP_V0:      opJpV0,
	OP_RND:        opRnd,
	OP_DRW:        opDrw,
	OP_SKP:        opSkp,
	OP_SKNP:       opSknp,
	OP_LD_VX_DT:   opLdVxDt,
	OP_LD_VX_K:    opLdVxK,
	OP_LD_DT:      opLdDt,
	OP_LD_ST:      opLdSt,
	OP_ADD_I:      opAddI,
	OP_LD_F:       opLdF,
	OP_LD_B:       opLdB,
	OP_LD_MEM_REG: opLdMemReg,
	OP_LD_REG_MEM: opLdRegMem,
}

func b2u(flag bool) uint8 {
	if flag {
		return 1
	}
	return 0
}

// skipIf skips the next instruction when cond holds.
func (cpu *Cpu) skipIf(cond bool) {
	if cond {
		cpu.Pc += 2
	}
}

func opUnknown(cpu *Cpu, op Opcode) error {
	return ErrOpcodeUnknown
}

func opNop(cpu *Cpu, op Opcode) error {
	return nil
}

func opCls(cpu *Cpu, op Opcode) error {
	cpu.Display.Clear()
	return nil
}

func opRet(cpu *Cpu, op Opcode) (err error) {
	addr, err := cpu.Stack.Pop()
	if err != nil {
		return
	}
	cpu.Pc = addr
	return
}

func opJp(cpu *Cpu, op Opcode) error {
	cpu.Pc = op.NNN()
	return nil
}

func opCall(cpu *Cpu, op Opcode) (err error) {
	err = cpu.Stack.Push(cpu.Pc)
	if err != nil {
		return
	}
	cpu.Pc = op.NNN()
	return
}

func opSeByte(cpu *Cpu, op Opcode) error {
	cpu.skipIf(cpu.V[op.X()] == op.KK())
	return nil
}

func opSneByte(cpu *Cpu, op Opcode) error {
	cpu.skipIf(cpu.V[op.X()] != op.KK())
	return nil
}

func opSeReg(cpu *Cpu, op Opcode) error {
	cpu.skipIf(cpu.V[op.X()] == cpu.V[op.Y()])
	return nil
}

func opSneReg(cpu *Cpu, op Opcode) error {
	cpu.skipIf(cpu.V[op.X()] != cpu.V[op.Y()])
	return nil
}

func opLdByte(cpu *Cpu, op Opcode) error {
	cpu.V[op.X()] = op.KK()
	return nil
}

func opAddByte(cpu *Cpu, op Opcode) error {
	cpu.V[op.X()] += op.KK()
	return nil
}

// opAlu performs the 8xyN register operations. Flags are computed from the
// operands before the result is stored, and VF is written last.
func opAlu(cpu *Cpu, op Opcode) error {
	x, y := op.X(), op.Y()
	vx, vy := cpu.V[x], cpu.V[y]

	var result uint8
	var flag uint8
	hasFlag := true

	switch op.N() {
	case 0x0:
		result, hasFlag = vy, false
	case 0x1:
		result, hasFlag = vx|vy, false
	case 0x2:
		result, hasFlag = vx&vy, false
	case 0x3:
		result, hasFlag = vx^vy, false
	case 0x4:
		sum := uint16(vx) + uint16(vy)
		result, flag = uint8(sum), b2u(sum > 0xff)
	case 0x5:
		result, flag = vx-vy, b2u(vx > vy)
	case 0x6:
		src := vy
		if cpu.Quirks.ShiftVx {
			src = vx
		}
		result, flag = src>>1, src&1
	case 0x7:
		result, flag = vy-vx, b2u(vy > vx)
	case 0xE:
		src := vy
		if cpu.Quirks.ShiftVx {
			src = vx
		}
		result, flag = src<<1, src>>7
	default:
		return ErrOpcodeUnknown
	}

	cpu.V[x] = result
	if hasFlag {
		cpu.V[REG_FLAG] = flag
	}

	return nil
}

func opLdI(cpu *Cpu, op Opcode) error {
	cpu.I = op.NNN()
	return nil
}

func opJpV0(cpu *Cpu, op Opcode) (err error) {
	target := uint32(op.NNN()) + uint32(cpu.V[0])
	if target > MEMORY_LAST {
		err = ErrAddress(target)
		return
	}
	cpu.Pc = uint16(target)
	return
}

func opRnd(cpu *Cpu, op Opcode) error {
	cpu.V[op.X()] = uint8(cpu.Rand.Uint32()) & op.KK()
	return nil
}

func opDrw(cpu *Cpu, op Opcode) (err error) {
	sprite, err := cpu.Memory.Slice(cpu.I, int(op.N()))
	if err != nil {
		return
	}

	x, y := int(cpu.V[op.X()]), int(cpu.V[op.Y()])
	collision := cpu.Display.Draw(x, y, sprite)
	cpu.V[REG_FLAG] = b2u(collision)

	return
}

func opSkp(cpu *Cpu, op Opcode) error {
	cpu.skipIf(cpu.Keys.Pressed(cpu.V[op.X()]))
	return nil
}

func opSknp(cpu *Cpu, op Opcode) error {
	cpu.skipIf(!cpu.Keys.Pressed(cpu.V[op.X()]))
	return nil
}

func opLdVxDt(cpu *Cpu, op Opcode) error {
	cpu.V[op.X()] = cpu.Timers.Delay
	return nil
}

// opLdVxK waits for a key to go down. While waiting the program counter is
// rewound so the instruction executes again on the next cycle. A key held
// when the wait began must be released and pressed again.
func opLdVxK(cpu *Cpu, op Opcode) error {
	if cpu.Quirks.KeyWait == KEY_WAIT_NOOP {
		return nil
	}

	if cpu.Waiting {
		key, ok := cpu.Keys.Pressing(cpu.waitKeys)
		if ok {
			cpu.V[op.X()] = key
			cpu.Waiting = false
			return nil
		}
	}

	cpu.Waiting = true
	cpu.waitKeys = cpu.Keys
	cpu.Pc -= 2

	return nil
}

func opLdDt(cpu *Cpu, op Opcode) error {
	cpu.Timers.Delay = cpu.V[op.X()]
	return nil
}

func opLdSt(cpu *Cpu, op Opcode) error {
	cpu.Timers.Sound = cpu.V[op.X()]
	return nil
}

func opAddI(cpu *Cpu, op Opcode) (err error) {
	sum := uint32(cpu.I) + uint32(cpu.V[op.X()])
	if sum > MEMORY_LAST {
		err = ErrAddress(sum)
		return
	}
	cpu.I = uint16(sum)
	return
}

func opLdF(cpu *Cpu, op Opcode) error {
	cpu.I = GlyphAddress(cpu.V[op.X()])
	return nil
}

func opLdB(cpu *Cpu, op Opcode) (err error) {
	bcd, err := cpu.Memory.Slice(cpu.I, 3)
	if err != nil {
		return
	}

	vx := cpu.V[op.X()]
	bcd[0] = vx / 100
	bcd[1] = (vx / 10) % 10
	bcd[2] = vx % 10

	return
}

func opLdMemReg(cpu *Cpu, op Opcode) (err error) {
	count := int(op.X()) + 1
	mem, err := cpu.Memory.Slice(cpu.I, count)
	if err != nil {
		return
	}

	copy(mem, cpu.V[:count])
	cpu.I += uint16(count)

	return
}

func opLdRegMem(cpu *Cpu, op Opcode) (err error) {
	count := int(op.X()) + 1
	mem, err := cpu.Memory.Slice(cpu.I, count)
	if err != nil {
		return
	}

	copy(cpu.V[:count], mem)
	cpu.I += uint16(count)

	return
}
