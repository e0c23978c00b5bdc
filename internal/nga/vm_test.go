package nga

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"retro/internal/asm"
	"retro/internal/code"
	"retro/internal/limits"
)

func newVM[C Cell](t *testing.T, out io.Writer) *VM[C] {
	t.Helper()
	if out == nil {
		out = io.Discard
	}
	return New[C](Options{Stdout: out, Stdin: strings.NewReader("")})
}

// loadAsm assembles src at address 0 and returns its labels.
func loadAsm[C Cell](t *testing.T, v *VM[C], src string) map[string]int64 {
	t.Helper()
	p, err := asm.Assemble(t.Name(), src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if _, err := v.LoadWords(p.Cells); err != nil {
		t.Fatalf("load: %v", err)
	}
	return p.Labels
}

// step runs fn and turns a trap into an error.
func step[C Cell](v *VM[C], fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = v.recovered(r)
		}
	}()
	fn()
	return nil
}

func stackOf[C Cell](v *VM[C]) []int64 {
	var out []int64
	for _, x := range v.Stack() {
		out = append(out, int64(x))
	}
	return out
}

func expectStack[C Cell](t *testing.T, v *VM[C], want ...int64) {
	t.Helper()
	got := stackOf(v)
	if len(got) != len(want) {
		t.Fatalf("stack %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stack %v, want %v", got, want)
		}
	}
}

func both(t *testing.T, name string, f32 func(*testing.T), f64 func(*testing.T)) {
	t.Run(name+"/int32", f32)
	t.Run(name+"/int64", f64)
}

func TestLanesRunInOrder(t *testing.T) {
	both(t, "lanes", testLanesRunInOrder[int32], testLanesRunInOrder[int64])
}

func testLanesRunInOrder[C Cell](t *testing.T) {
	v := newVM[C](t, nil)
	loadAsm(t, v, `
i lilisu..
d 10
d 3
i li..lisw
d 1
d 2
i ha......
`)
	if err := v.Execute(0, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectStack(t, v, 7, 2, 1)
}

func TestInvalidWordRejectedBeforeAnyLane(t *testing.T) {
	v := newVM[int32](t, nil)
	bad := code.Pack(code.OpLit) | int64(code.LastOpcode+1)<<8
	v.Store(0, int32(bad))
	v.Store(1, 99)

	err := v.Execute(0, false)
	var e *Error
	if !errors.As(err, &e) || e.Errno != IllegalInstruction {
		t.Fatalf("expected illegal instruction, got %v", err)
	}
	if v.Depth() != 0 {
		t.Fatalf("no lane may run, stack is %v", v.Stack())
	}
	if e.IP != 0 || e.Word != bad {
		t.Fatalf("trap context ip=%d word=%d", e.IP, e.Word)
	}
	if !strings.HasPrefix(e.Error(), "Invalid instruction!\nAt 0, opcode ") {
		t.Fatalf("message %q", e.Error())
	}
	if e.ExitCode() != 1 {
		t.Fatalf("exit code %d", e.ExitCode())
	}
}

func TestDivMod(t *testing.T) {
	both(t, "divmod", testDivMod[int32], testDivMod[int64])
}

func testDivMod[C Cell](t *testing.T) {
	cases := [][2]C{{7, 2}, {-7, 2}, {7, -2}, {-7, -2}, {0, 5}, {5, 7}}
	lo, _ := Limits[C]()
	cases = append(cases, [2]C{lo - 1, -1})
	for _, c := range cases {
		v := newVM[C](t, nil)
		a, b := c[0], c[1]
		if err := step(v, func() {
			v.push(a)
			v.push(b)
			v.exec(code.OpDivMod)
		}); err != nil {
			t.Fatalf("%d /mod %d: %v", a, b, err)
		}
		st := v.Stack()
		r, q := st[0], st[1]
		if q*b+r != a {
			t.Fatalf("%d /mod %d gave q=%d r=%d", a, b, q, r)
		}
		if r != 0 && (r < 0) != (a < 0) {
			t.Fatalf("remainder %d must take the dividend's sign", r)
		}
	}

	v := newVM[C](t, nil)
	err := step(v, func() {
		v.push(1)
		v.push(0)
		v.exec(code.OpDivMod)
	})
	if !errors.Is(err, DivisionByZero) {
		t.Fatalf("expected division by zero trap, got %v", err)
	}
}

func TestCallReturnRestoresIPAndRP(t *testing.T) {
	v := newVM[int64](t, nil)
	v.ip, v.rp = 40, 3
	err := step(v, func() {
		v.push(100)
		v.exec(code.OpCall)
		if v.ip != 99 || v.rp != 4 {
			t.Fatalf("after call ip=%d rp=%d", v.ip, v.rp)
		}
		v.exec(code.OpReturn)
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.ip != 40 || v.rp != 3 || v.Depth() != 0 {
		t.Fatalf("after return ip=%d rp=%d sp=%d", v.ip, v.rp, v.Depth())
	}
}

func TestPushPopIsIdentity(t *testing.T) {
	v := newVM[int32](t, nil)
	err := step(v, func() {
		v.push(5)
		v.push(42)
		v.exec(code.OpPush)
		v.exec(code.OpPop)
	})
	if err != nil {
		t.Fatal(err)
	}
	expectStack(t, v, 5, 42)
	if v.RDepth() != 0 {
		t.Fatalf("address stack not balanced: %d", v.RDepth())
	}
}

func TestCCall(t *testing.T) {
	v := newVM[int32](t, nil)
	v.ip = 10
	_ = step(v, func() {
		v.push(0)
		v.push(50)
		v.exec(code.OpCCall)
	})
	if v.ip != 10 || v.rp != 0 || v.Depth() != 0 {
		t.Fatalf("false flag must not call: ip=%d rp=%d", v.ip, v.rp)
	}
	_ = step(v, func() {
		v.push(-1)
		v.push(50)
		v.exec(code.OpCCall)
	})
	if v.ip != 49 || v.rp != 1 || v.address[1] != 10 {
		t.Fatalf("true flag must call: ip=%d rp=%d", v.ip, v.rp)
	}
}

func TestComparisonsAndZeroReturn(t *testing.T) {
	v := newVM[int64](t, nil)
	loadAsm(t, v, `
i lica....
r sub
i ha......
: sub
i lililtli
d 1
d 2
d 0
i zr......
`)
	if err := v.Execute(0, false); err != nil {
		t.Fatal(err)
	}
	// zr dropped the 0 and returned; 1 < 2 is true
	expectStack(t, v, -1)
}

func TestHaltEndsExecutionRegardlessOfLaterLanes(t *testing.T) {
	both(t, "halt", testHalt[int32], testHalt[int64])
}

func testHalt[C Cell](t *testing.T) {
	v := newVM[C](t, nil)
	v.Store(100, C(code.Pack(code.OpHalt, code.OpLit, code.OpJump)))
	if err := v.Execute(100, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IP() != ImageSize {
		t.Fatalf("ip = %d, want %d", v.IP(), ImageSize)
	}
	if !v.Stopped() {
		t.Fatalf("halt should mark the VM stopped")
	}
}

func TestDropUnderflowIsSoftHalt(t *testing.T) {
	v := newVM[int32](t, nil)
	v.Store(0, int32(code.Pack(code.OpDrop, code.OpLit)))
	v.Store(1, 7)
	if err := v.Execute(0, false); err != nil {
		t.Fatalf("drop underflow must not trap: %v", err)
	}
	if v.IP() != ImageSize || v.Stopped() {
		t.Fatalf("ip=%d stopped=%v", v.IP(), v.Stopped())
	}
}

func TestPushUnderflowIsSoftHalt(t *testing.T) {
	v := newVM[int32](t, nil)
	v.Store(0, int32(code.Pack(code.OpPush)))
	if err := v.Execute(0, false); err != nil {
		t.Fatalf("push on an empty stack must not trap: %v", err)
	}
	if v.IP() != ImageSize || v.Depth() != 0 || v.RDepth() != 0 {
		t.Fatalf("ip=%d depth=%d rdepth=%d", v.IP(), v.Depth(), v.RDepth())
	}
}

func TestFetchSpecialAddresses(t *testing.T) {
	both(t, "fetch", testFetch[int32], testFetch[int64])
}

func testFetch[C Cell](t *testing.T) {
	lo, hi := Limits[C]()
	v := newVM[C](t, nil)
	v.Store(77, 1234)
	cases := []struct {
		addr C
		want C
	}{
		{-3, ImageSize},
		{-4, lo},
		{-5, hi},
		{77, 1234},
		{ImageSize, 0},
	}
	for _, c := range cases {
		_ = step(v, func() {
			v.push(c.addr)
			v.exec(code.OpFetch)
		})
		if got := v.Stack()[v.Depth()-1]; got != c.want {
			t.Fatalf("fetch %d = %d, want %d", c.addr, got, c.want)
		}
	}
	_ = step(v, func() {
		v.push(-1)
		v.exec(code.OpFetch)
	})
	if got := v.Stack()[v.Depth()-1]; got != C(len(cases)) {
		t.Fatalf("fetch -1 = %d, want depth below it %d", got, len(cases))
	}

	v.ip = 0
	_ = step(v, func() {
		v.push(ImageSize + 1)
		v.exec(code.OpFetch)
	})
	if v.ip != ImageSize || !v.halted {
		t.Fatalf("out of range fetch should soft halt")
	}
}

func TestStoreOutOfRangeSoftHalts(t *testing.T) {
	v := newVM[int32](t, nil)
	_ = step(v, func() {
		v.push(9)
		v.push(-7)
		v.exec(code.OpStore)
	})
	if v.ip != ImageSize || v.Depth() != 2 {
		t.Fatalf("ip=%d depth=%d", v.ip, v.Depth())
	}
	v.halted = false
	_ = step(v, func() {
		v.drop()
		v.push(500)
		v.exec(code.OpStore)
	})
	if v.Fetch(500) != 9 || v.Depth() != 0 {
		t.Fatalf("store failed: mem=%d depth=%d", v.Fetch(500), v.Depth())
	}
}

func TestShift(t *testing.T) {
	if got := shift[int32](-8, 1); got != -4 {
		t.Fatalf("-8 1 shift = %d", got)
	}
	if got := shift[int32](1, -3); got != 8 {
		t.Fatalf("1 -3 shift = %d", got)
	}
	if got := shift[int32](-1, 40); got != -1 {
		t.Fatalf("-1 40 shift = %d", got)
	}
	if got := shift[int64](5, 100); got != 0 {
		t.Fatalf("5 100 shift = %d", got)
	}
	if got := shift[int32](1, -2147483648); got != 0 {
		t.Fatalf("huge left shift = %d", got)
	}
	if got := shift[int64](-256, 4); got != -16 {
		t.Fatalf("-256 4 shift = %d", got)
	}
}

func TestStackDepthCheckedPerWord(t *testing.T) {
	v := newVM[int32](t, nil)
	loadAsm(t, v, `
: loop
i duliju..
r loop
`)
	v.Push(1)
	err := v.Execute(0, false)
	if !errors.Is(err, StackLimits) {
		t.Fatalf("expected stack limits, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Stack Limits Exceeded!\nAt ") {
		t.Fatalf("message %q", err.Error())
	}
	var e *Error
	errors.As(err, &e)
	if len(e.Stack) != StackDepth || v.Depth() != StackDepth {
		t.Fatalf("snapshot %d cells, depth %d", len(e.Stack), v.Depth())
	}
}

func TestShortStackIsNotFatal(t *testing.T) {
	v := newVM[int64](t, nil)
	v.Store(0, int64(code.Pack(code.OpSwap, code.OpHalt)))
	v.Push(3)
	if err := v.Execute(0, false); err != nil {
		t.Fatalf("swap with one item: %v", err)
	}
	if v.Depth() != 1 {
		t.Fatalf("swap changed the depth to %d", v.Depth())
	}

	v.Store(0, int64(code.Pack(code.OpAdd, code.OpHalt)))
	if err := v.Execute(0, false); err != nil {
		t.Fatalf("add with one item: %v", err)
	}
	if v.Depth() != 0 {
		t.Fatalf("depth after add %d", v.Depth())
	}

	v.Store(0, int64(code.Pack(code.OpCCall)))
	if err := v.Execute(0, false); !errors.Is(err, StackLimits) {
		t.Fatalf("ccall on an empty stack should leave it negative, got %v", err)
	}
	if v.Depth() != 0 {
		t.Fatalf("depth not clamped after the trap: %d", v.Depth())
	}
}

func TestBudgetStopsRunawayLoop(t *testing.T) {
	v := newVM[int32](t, nil)
	loadAsm(t, v, `
: loop
i liju....
r loop
`)
	v.SetBudget(limits.NewBudget(100))
	err := v.Execute(0, false)
	var sl limits.StepLimitError
	if !errors.Is(err, BudgetExceeded) || !errors.As(err, &sl) {
		t.Fatalf("expected budget trap, got %v", err)
	}
}

func TestIllegalDevice(t *testing.T) {
	v := newVM[int32](t, nil)
	err := step(v, func() {
		v.push(NumDevices + 1)
		v.exec(code.OpIOQuery)
	})
	if !errors.Is(err, IllegalDevice) {
		t.Fatalf("expected illegal device, got %v", err)
	}
}

func TestTraceLogsDoNotChangeResults(t *testing.T) {
	var out bytes.Buffer
	v := newVM[int32](t, &out)
	v.SetTrace(true)
	loadAsm(t, v, "i liliad..\nd 2\nd 3\ni ha......\n")
	if err := v.Execute(0, false); err != nil {
		t.Fatal(err)
	}
	expectStack(t, v, 5)
	if out.Len() != 0 {
		t.Fatalf("trace must not write guest output: %q", out.String())
	}
}

func TestDumpStack(t *testing.T) {
	v := newVM[int32](t, nil)
	var buf bytes.Buffer
	v.DumpStack(&buf)
	if buf.Len() != 0 {
		t.Fatalf("empty stack should print nothing")
	}
	for _, x := range []int32{1, 2, 3} {
		_ = v.Push(x)
	}
	v.DumpStack(&buf)
	if buf.String() != "\nStack: 1 2 [ TOS: 3 ]\n" {
		t.Fatalf("dump %q", buf.String())
	}
}

func TestIndependentInstances(t *testing.T) {
	a := newVM[int32](t, nil)
	b := newVM[int32](t, nil)
	_ = a.Push(1)
	a.Store(10, 5)
	if b.Depth() != 0 || b.Fetch(10) != 0 {
		t.Fatalf("VMs share state")
	}
}
