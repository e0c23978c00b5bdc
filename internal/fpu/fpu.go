// Package fpu is the floating point coprocessor: two bounded stacks of
// float64 and the operations the floating point device exposes.
package fpu

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const Depth = 8192

var (
	ErrOverflow  = errors.New("float stack overflow")
	ErrUnderflow = errors.New("float stack underflow")
)

type stack struct {
	data []float64
}

func (s *stack) push(x float64) error {
	if len(s.data) >= Depth {
		return ErrOverflow
	}
	s.data = append(s.data, x)
	return nil
}

func (s *stack) pop() (float64, error) {
	n := len(s.data)
	if n == 0 {
		return 0, ErrUnderflow
	}
	x := s.data[n-1]
	s.data = s.data[:n-1]
	return x, nil
}

type Unit struct {
	primary   stack
	alternate stack
}

func New() *Unit {
	return &Unit{
		primary:   stack{data: make([]float64, 0, 64)},
		alternate: stack{data: make([]float64, 0, 16)},
	}
}

func (u *Unit) Reset() {
	u.primary.data = u.primary.data[:0]
	u.alternate.data = u.alternate.data[:0]
}

func (u *Unit) Push(x float64) error { return u.primary.push(x) }
func (u *Unit) Pop() (float64, error) { return u.primary.pop() }
func (u *Unit) Depth() int { return len(u.primary.data) }
func (u *Unit) AltDepth() int { return len(u.alternate.data) }
func (u *Unit) Stack() []float64 { return append([]float64(nil), u.primary.data...) }
func (u *Unit) AltStack() []float64 { return append([]float64(nil), u.alternate.data...) }

func (u *Unit) Dup() error {
	x, err := u.Pop()
	if err != nil {
		return err
	}
	_ = u.Push(x)
	return u.Push(x)
}

func (u *Unit) Drop() error {
	_, err := u.Pop()
	return err
}

func (u *Unit) Swap() error {
	a, b, err := u.pop2()
	if err != nil {
		return err
	}
	_ = u.Push(a)
	return u.Push(b)
}

// ToAlt moves the top of the primary stack to the alternate stack.
func (u *Unit) ToAlt() error {
	x, err := u.primary.pop()
	if err != nil {
		return err
	}
	return u.alternate.push(x)
}

func (u *Unit) FromAlt() error {
	x, err := u.alternate.pop()
	if err != nil {
		return err
	}
	return u.primary.push(x)
}

// pop2 pops a (the top) and then b.
func (u *Unit) pop2() (a, b float64, err error) {
	if u.Depth() < 2 {
		return 0, 0, ErrUnderflow
	}
	a, _ = u.Pop()
	b, _ = u.Pop()
	return a, b, nil
}

// binary pops a then b and pushes f(b, a), so "x y sub" computes x-y.
func (u *Unit) binary(f func(b, a float64) float64) error {
	a, b, err := u.pop2()
	if err != nil {
		return err
	}
	return u.Push(f(b, a))
}

func (u *Unit) unary(f func(float64) float64) error {
	x, err := u.Pop()
	if err != nil {
		return err
	}
	return u.Push(f(x))
}

func (u *Unit) Add() error { return u.binary(func(b, a float64) float64 { return b + a }) }
func (u *Unit) Sub() error { return u.binary(func(b, a float64) float64 { return b - a }) }
func (u *Unit) Mul() error { return u.binary(func(b, a float64) float64 { return b * a }) }
func (u *Unit) Div() error { return u.binary(func(b, a float64) float64 { return b / a }) }
func (u *Unit) Pow() error { return u.binary(math.Pow) }

// Log computes the logarithm of b in base a.
func (u *Unit) Log() error {
	return u.binary(func(b, a float64) float64 { return math.Log(b) / math.Log(a) })
}

func (u *Unit) Floor() error { return u.unary(math.Floor) }
func (u *Unit) Ceil() error { return u.unary(math.Ceil) }
func (u *Unit) Sqrt() error { return u.unary(math.Sqrt) }
func (u *Unit) Sin() error { return u.unary(math.Sin) }
func (u *Unit) Cos() error { return u.unary(math.Cos) }
func (u *Unit) Tan() error { return u.unary(math.Tan) }
func (u *Unit) Asin() error { return u.unary(math.Asin) }
func (u *Unit) Acos() error { return u.unary(math.Acos) }
func (u *Unit) Atan() error { return u.unary(math.Atan) }

func (u *Unit) compare(f func(b, a float64) bool) (bool, error) {
	a, b, err := u.pop2()
	if err != nil {
		return false, err
	}
	return f(b, a), nil
}

func (u *Unit) Eq() (bool, error) { return u.compare(func(b, a float64) bool { return b == a }) }
func (u *Unit) Neq() (bool, error) { return u.compare(func(b, a float64) bool { return b != a }) }
func (u *Unit) Lt() (bool, error) { return u.compare(func(b, a float64) bool { return b < a }) }
func (u *Unit) Gt() (bool, error) { return u.compare(func(b, a float64) bool { return b > a }) }

// ToInt converts x to a signed integer of the given bit width, rounding
// half away from zero and saturating at the limits of the width.
func ToInt(x float64, bits int) int64 {
	if math.IsNaN(x) {
		return 0
	}
	hi := int64(1)<<(bits-1) - 1
	lo := -hi - 1
	r := math.Round(x)
	switch {
	case r >= float64(hi):
		return hi
	case r <= float64(lo):
		return lo
	}
	return int64(r)
}

func ToString(x float64) string {
	return fmt.Sprintf("%f", x)
}

// FromString parses the longest numeric prefix of s, ignoring leading
// white space. Anything unparsable yields 0.
func FromString(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	if v, ok := special(s); ok {
		return v
	}
	end := numberPrefix(s)
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		// out of range values come back as ±Inf together with the error
		var ne *strconv.NumError
		if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
			return v
		}
		return 0
	}
	return v
}

func special(s string) (float64, bool) {
	sign := 1.0
	body := s
	if body != "" && (body[0] == '+' || body[0] == '-') {
		if body[0] == '-' {
			sign = -1
		}
		body = body[1:]
	}
	lower := strings.ToLower(body)
	switch {
	case strings.HasPrefix(lower, "inf"):
		return math.Inf(int(sign)), true
	case strings.HasPrefix(lower, "nan"):
		return math.NaN(), true
	}
	return 0, false
}

// numberPrefix returns the length of the longest prefix of s shaped like
// [sign] digits [. digits] [e [sign] digits].
func numberPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
