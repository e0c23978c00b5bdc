package nga

import "retro/internal/code"

// softHalt ends the current word and execution without an error.
func (v *VM[C]) softHalt() {
	v.ip = ImageSize
	v.halted = true
}

// load reads a cell for the instruction stream; addresses past the image
// read as zero.
func (v *VM[C]) load(addr int) C {
	if addr < 0 || addr > ImageSize {
		return 0
	}
	return v.mem[addr]
}

func (v *VM[C]) exec(op code.Opcode) {
	switch op {
	case code.OpNop:
	case code.OpLit:
		v.ip++
		v.push(v.load(v.ip))
	case code.OpDup:
		v.push(v.tos())
	case code.OpDrop:
		v.drop()
	case code.OpSwap:
		a, b := v.tos(), v.nos()
		v.put(v.sp, b)
		v.put(v.sp-1, a)
	case code.OpPush:
		v.rpush(v.tos())
		v.drop()
	case code.OpPop:
		v.push(v.rpop())
	case code.OpJump:
		v.ip = int(v.tos()) - 1
		v.drop()
	case code.OpCall:
		target := v.tos()
		v.rpush(C(v.ip))
		v.ip = int(target) - 1
		v.drop()
	case code.OpCCall:
		target := v.pop()
		if v.pop() != 0 {
			v.rpush(C(v.ip))
			v.ip = int(target) - 1
		}
	case code.OpReturn:
		v.ip = int(v.rpop())
	case code.OpEq:
		v.binary(func(a, b C) C { return flag[C](a == b) })
	case code.OpNeq:
		v.binary(func(a, b C) C { return flag[C](a != b) })
	case code.OpLt:
		v.binary(func(a, b C) C { return flag[C](a < b) })
	case code.OpGt:
		v.binary(func(a, b C) C { return flag[C](a > b) })
	case code.OpFetch:
		v.fetch()
	case code.OpStore:
		addr := v.tos()
		if addr < 0 || addr > ImageSize {
			v.softHalt()
			return
		}
		v.mem[addr] = v.nos()
		v.drop()
		v.drop()
	case code.OpAdd:
		v.binary(func(a, b C) C { return a + b })
	case code.OpSub:
		v.binary(func(a, b C) C { return a - b })
	case code.OpMul:
		v.binary(func(a, b C) C { return a * b })
	case code.OpDivMod:
		d := v.tos()
		if d == 0 {
			v.trap(DivisionByZero)
		}
		n := v.nos()
		v.put(v.sp, n/d)
		v.put(v.sp-1, n%d)
	case code.OpAnd:
		v.binary(func(a, b C) C { return a & b })
	case code.OpOr:
		v.binary(func(a, b C) C { return a | b })
	case code.OpXor:
		v.binary(func(a, b C) C { return a ^ b })
	case code.OpShift:
		v.binary(shift[C])
	case code.OpZeroReturn:
		if v.tos() == 0 {
			v.drop()
			if !v.halted {
				v.ip = int(v.rpop())
			}
		}
	case code.OpHalt:
		v.softHalt()
		v.stopped = true
	case code.OpIOEnumerate:
		v.push(NumDevices)
	case code.OpIOQuery:
		v.query(v.device())
	case code.OpIOInvoke:
		v.invoke(v.device())
	default:
		v.trap(IllegalInstruction)
	}
}

// drop on an empty stack halts instead of trapping.
func (v *VM[C]) drop() {
	if v.sp < 1 {
		v.sp = 0
		v.softHalt()
		return
	}
	v.put(v.sp, 0)
	v.sp--
}

// binary replaces NOS with f(NOS, TOS) and drops TOS.
func (v *VM[C]) binary(f func(a, b C) C) {
	v.put(v.sp-1, f(v.nos(), v.tos()))
	v.drop()
}

func (v *VM[C]) fetch() {
	lo, hi := Limits[C]()
	switch a := v.tos(); {
	case a == -1:
		v.put(v.sp, C(v.sp-1))
	case a == -2:
		v.put(v.sp, C(v.rp))
	case a == -3:
		v.put(v.sp, ImageSize)
	case a == -4:
		v.put(v.sp, lo)
	case a == -5:
		v.put(v.sp, hi)
	case a >= 0 && a <= ImageSize:
		v.put(v.sp, v.mem[a])
	default:
		v.softHalt()
	}
}

// shift moves x left by -y bits when y is negative and right by y bits
// otherwise. Right shifts of negative values fill with ones.
func shift[C Cell](x, y C) C {
	if y < 0 {
		return x << uint64(-int64(y))
	}
	if x < 0 && y > 0 {
		bits := uint64(Bits[C]())
		n := uint64(y)
		var mask C = -1
		if n < bits {
			// ones in the top n bits
			mask = ^C(0) << (bits - n)
		}
		return x>>n | mask
	}
	return x >> uint64(y)
}

func (v *VM[C]) device() DeviceID {
	id := v.pop()
	if id < 0 || id > NumDevices {
		v.trap(IllegalDevice)
	}
	return DeviceID(id)
}
