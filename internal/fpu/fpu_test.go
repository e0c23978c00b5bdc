package fpu

import (
	"errors"
	"math"
	"testing"
)

func pushAll(t *testing.T, u *Unit, xs ...float64) {
	t.Helper()
	for _, x := range xs {
		if err := u.Push(x); err != nil {
			t.Fatalf("push %v: %v", x, err)
		}
	}
}

func top(t *testing.T, u *Unit) float64 {
	t.Helper()
	x, err := u.Pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	return x
}

func TestReversedOperandOrder(t *testing.T) {
	u := New()
	pushAll(t, u, 10, 4)
	if err := u.Sub(); err != nil {
		t.Fatal(err)
	}
	if got := top(t, u); got != 6 {
		t.Fatalf("10 4 sub = %v, want 6", got)
	}

	pushAll(t, u, 10, 4)
	_ = u.Div()
	if got := top(t, u); got != 2.5 {
		t.Fatalf("10 4 div = %v, want 2.5", got)
	}

	pushAll(t, u, 2, 10)
	_ = u.Pow()
	if got := top(t, u); got != 1024 {
		t.Fatalf("2 10 pow = %v, want 1024", got)
	}

	pushAll(t, u, 8, 2)
	_ = u.Log()
	if got := top(t, u); math.Abs(got-3) > 1e-12 {
		t.Fatalf("8 2 log = %v, want 3", got)
	}

	pushAll(t, u, 1, 2)
	lt, _ := u.Lt()
	pushAll(t, u, 1, 2)
	gt, _ := u.Gt()
	if !lt || gt {
		t.Fatalf("1 2 lt = %v, gt = %v", lt, gt)
	}
}

func TestStackShuffles(t *testing.T) {
	u := New()
	pushAll(t, u, 1, 2)
	_ = u.Swap()
	_ = u.Dup()
	got := u.Stack()
	want := []float64{2, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stack %v, want %v", got, want)
		}
	}
	_ = u.ToAlt()
	if u.Depth() != 2 || u.AltDepth() != 1 {
		t.Fatalf("depths %d/%d", u.Depth(), u.AltDepth())
	}
	_ = u.FromAlt()
	if u.AltDepth() != 0 || top(t, u) != 1 {
		t.Fatalf("from-alt did not restore the value")
	}
}

func TestUnderflowAndOverflow(t *testing.T) {
	u := New()
	if err := u.Add(); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("add on empty stack: %v", err)
	}
	if err := u.FromAlt(); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("from-alt on empty stack: %v", err)
	}
	for i := 0; i < Depth; i++ {
		if err := u.Push(0); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := u.Push(0); !errors.Is(err, ErrOverflow) {
		t.Fatalf("push past depth: %v", err)
	}
}

func TestToInt(t *testing.T) {
	cases := []struct {
		x    float64
		bits int
		want int64
	}{
		{2.5, 32, 3},
		{-2.5, 32, -3},
		{2.4, 32, 2},
		{1e20, 32, math.MaxInt32},
		{-1e20, 32, math.MinInt32},
		{1e20, 64, math.MaxInt64},
		{-1e20, 64, math.MinInt64},
		{math.NaN(), 64, 0},
		{math.Inf(1), 32, math.MaxInt32},
	}
	for _, c := range cases {
		if got := ToInt(c.x, c.bits); got != c.want {
			t.Fatalf("ToInt(%v, %d) = %d, want %d", c.x, c.bits, got, c.want)
		}
	}
}

func TestFromString(t *testing.T) {
	cases := map[string]float64{
		"3.25":     3.25,
		"  -1.5e2": -150,
		"12abc":    12,
		"1e":       1,
		".5":       0.5,
		"abc":      0,
		"":         0,
		"-":        0,
	}
	for in, want := range cases {
		if got := FromString(in); got != want {
			t.Fatalf("FromString(%q) = %v, want %v", in, got, want)
		}
	}
	if !math.IsInf(FromString("-inf"), -1) || !math.IsNaN(FromString("nan")) {
		t.Fatalf("special values not recognised")
	}
}

func TestToString(t *testing.T) {
	if got := ToString(1.5); got != "1.500000" {
		t.Fatalf("ToString(1.5) = %q", got)
	}
}
