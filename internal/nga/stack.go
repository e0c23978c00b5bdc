package nga

import (
	"fmt"
	"io"
	"strings"
)

// at reads slot i. Slots outside the stack read as zero.
func (v *VM[C]) at(i int) C {
	if i < 0 || i > StackDepth {
		return 0
	}
	return v.data[i]
}

// put writes slot i. Writes outside the stack are lost; the depth check
// after each word reports them.
func (v *VM[C]) put(i int, x C) {
	if i >= 0 && i <= StackDepth {
		v.data[i] = x
	}
}

func (v *VM[C]) push(x C) {
	v.sp++
	v.put(v.sp, x)
}

func (v *VM[C]) pop() C {
	x := v.at(v.sp)
	v.put(v.sp, 0)
	v.sp--
	return x
}

func (v *VM[C]) tos() C { return v.at(v.sp) }
func (v *VM[C]) nos() C { return v.at(v.sp - 1) }

func (v *VM[C]) rpush(x C) {
	if v.rp+1 >= Addresses {
		v.trap(RStackOverflow)
	}
	v.rp++
	v.address[v.rp] = x
}

func (v *VM[C]) rpop() C {
	if v.rp < 1 {
		v.trap(RStackUnderflow)
	}
	x := v.address[v.rp]
	v.rp--
	return x
}

// Push places x on the data stack.
func (v *VM[C]) Push(x C) error {
	if v.sp >= StackDepth {
		return &Error{Errno: StackOverflow, IP: int64(v.ip)}
	}
	v.push(x)
	return nil
}

// Pop removes the top of the data stack.
func (v *VM[C]) Pop() (C, error) {
	if v.sp < 1 {
		return 0, &Error{Errno: StackUnderflow, IP: int64(v.ip)}
	}
	return v.pop(), nil
}

func (v *VM[C]) Depth() int { return v.sp }
func (v *VM[C]) RDepth() int { return v.rp }

// Stack returns a copy of the data stack, bottom first.
func (v *VM[C]) Stack() []C {
	out := make([]C, 0, v.sp)
	for i := 1; i <= v.sp; i++ {
		out = append(out, v.data[i])
	}
	return out
}

// DumpStack writes the data stack as "Stack: 1 2 [ TOS: 3 ]". Nothing is
// written for an empty stack.
func (v *VM[C]) DumpStack(w io.Writer) {
	if v.sp <= 0 {
		return
	}
	var sb strings.Builder
	sb.WriteString("\nStack: ")
	for i := 1; i <= v.sp; i++ {
		if i == v.sp {
			fmt.Fprintf(&sb, "[ TOS: %d ]", v.data[i])
		} else {
			fmt.Fprintf(&sb, "%d ", v.data[i])
		}
	}
	sb.WriteString("\n")
	_, _ = io.WriteString(w, sb.String())
}
