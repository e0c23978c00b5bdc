package nga

import "retro/internal/fpu"

// Floating point device actions, in device order.
const (
	floatFromNumber = iota
	floatFromString
	floatToNumber
	floatToString
	floatAdd
	floatSub
	floatMul
	floatDiv
	floatFloor
	floatCeil
	floatSqrt
	floatEq
	floatNeq
	floatLt
	floatGt
	floatDepth
	floatDup
	floatDrop
	floatSwap
	floatLog
	floatPow
	floatSin
	floatTan
	floatCos
	floatAsin
	floatAcos
	floatAtan
	floatToAlt
	floatFromAlt
	floatAltDepth
)

func (v *VM[C]) fcheck(err error) {
	if err != nil {
		v.trapErr(FloatStack, err)
	}
}

func (v *VM[C]) fpop() float64 {
	x, err := v.fpu.Pop()
	v.fcheck(err)
	return x
}

func (v *VM[C]) fcompare(f func() (bool, error)) {
	b, err := f()
	v.fcheck(err)
	v.push(flag[C](b))
}

func (v *VM[C]) devFloat() {
	u := v.fpu
	switch v.action() {
	case floatFromNumber:
		v.fcheck(u.Push(float64(v.pop())))
	case floatFromString:
		v.fcheck(u.Push(fpu.FromString(v.ExtractString(v.pop()))))
	case floatToNumber:
		v.push(C(fpu.ToInt(v.fpop(), Bits[C]())))
	case floatToString:
		s := fpu.ToString(v.fpop())
		v.InjectString(s, v.pop())
	case floatAdd:
		v.fcheck(u.Add())
	case floatSub:
		v.fcheck(u.Sub())
	case floatMul:
		v.fcheck(u.Mul())
	case floatDiv:
		v.fcheck(u.Div())
	case floatFloor:
		v.fcheck(u.Floor())
	case floatCeil:
		v.fcheck(u.Ceil())
	case floatSqrt:
		v.fcheck(u.Sqrt())
	case floatEq:
		v.fcompare(u.Eq)
	case floatNeq:
		v.fcompare(u.Neq)
	case floatLt:
		v.fcompare(u.Lt)
	case floatGt:
		v.fcompare(u.Gt)
	case floatDepth:
		v.push(C(u.Depth()))
	case floatDup:
		v.fcheck(u.Dup())
	case floatDrop:
		v.fcheck(u.Drop())
	case floatSwap:
		v.fcheck(u.Swap())
	case floatLog:
		v.fcheck(u.Log())
	case floatPow:
		v.fcheck(u.Pow())
	case floatSin:
		v.fcheck(u.Sin())
	case floatTan:
		v.fcheck(u.Tan())
	case floatCos:
		v.fcheck(u.Cos())
	case floatAsin:
		v.fcheck(u.Asin())
	case floatAcos:
		v.fcheck(u.Acos())
	case floatAtan:
		v.fcheck(u.Atan())
	case floatToAlt:
		v.fcheck(u.ToAlt())
	case floatFromAlt:
		v.fcheck(u.FromAlt())
	case floatAltDepth:
		v.push(C(u.AltDepth()))
	default:
		v.trap(IllegalAction)
	}
}
