// Package nga implements the Nga virtual machine: a fixed memory image,
// data and address stacks, four opcodes packed per cell, and a table of
// numbered I/O devices.
package nga

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tliron/commonlog"

	"retro/internal/code"
	"retro/internal/display"
	"retro/internal/files"
	"retro/internal/fpu"
	"retro/internal/limits"
)

var log = commonlog.GetLogger("retro.nga")

// Options configures the host side of a VM. Zero values pick the process
// streams and no script arguments.
type Options struct {
	Stdout io.Writer
	Stdin  io.Reader

	// Args mirrors a command line: Args[0] is the script name and the
	// rest are visible to the guest through the scripting device.
	Args []string

	// RunTests makes includes evaluate ``` blocks as well as ~~~ blocks.
	RunTests bool

	Budget *limits.Budget
	Trace  bool

	// Display backs device 9. A headless frame is created when nil.
	Display *display.Frame

	// Now is the clock used by the time actions.
	Now func() time.Time
}

type VM[C Cell] struct {
	mem     []C
	data    [StackDepth + 1]C
	address [Addresses]C
	sp      int
	rp      int
	ip      int
	word    C

	// Dictionary is the latest header, Interpret and NotFound are the xts
	// of the words the host calls and reports on.
	Dictionary C
	Interpret  C
	NotFound   C

	halted  bool // the current word ends execution
	stopped bool // the guest ran halt
	depth   int
	silent  bool

	out      io.Writer
	in       *bufio.Reader
	args     []string
	runTests bool
	budget   *limits.Budget
	trace    bool
	now      func() time.Time

	files   *files.Table
	fpu     *fpu.Unit
	display *display.Frame
}

func New[C Cell](opts Options) *VM[C] {
	v := &VM[C]{
		mem:      make([]C, ImageSize+1),
		out:      opts.Stdout,
		args:     opts.Args,
		runTests: opts.RunTests,
		budget:   opts.Budget,
		trace:    opts.Trace,
		now:      opts.Now,
		files:    files.NewTable(),
		fpu:      fpu.New(),
		display:  opts.Display,
	}
	if v.out == nil {
		v.out = os.Stdout
	}
	in := opts.Stdin
	if in == nil {
		in = os.Stdin
	}
	v.in = bufio.NewReader(in)
	if v.now == nil {
		v.now = time.Now
	}
	if v.display == nil {
		v.display = display.New()
	}
	if len(v.args) == 0 {
		v.args = []string{"retro"}
	}
	v.Prepare()
	return v
}

func (v *VM[C]) SetBudget(b *limits.Budget) { v.budget = b }
func (v *VM[C]) SetTrace(on bool) { v.trace = on }
func (v *VM[C]) SetRunTests(on bool) { v.runTests = on }

// Execute runs the code at entry until it returns, halts or leaves the
// image. Calls may nest: a nested call ends when the address stack
// unwinds to the depth it started at and leaves the caller's ip and rp
// untouched. The address stack is unwound to its starting depth even
// after a trap. The data stack depth is checked once per word.
// silent suppresses the "word not found" report.
func (v *VM[C]) Execute(entry C, silent bool) (err error) {
	base := v.rp
	savedIP := v.ip
	savedSilent := v.silent
	outer := v.depth == 0
	v.depth++
	v.silent = silent
	if outer {
		v.stopped = false
	}

	defer func() {
		v.depth--
		v.silent = savedSilent
		v.halted = false
		if r := recover(); r != nil {
			err = v.recovered(r)
		}
		v.rp = base
		if !outer {
			v.ip = savedIP
		}
	}()

	if base+1 >= Addresses {
		v.trap(RStackOverflow)
	}
	v.rp = base + 1
	v.ip = int(entry)
	v.halted = false
	token := C(TIB)

	for v.ip < ImageSize {
		if v.ip < 0 {
			v.word = 0
			v.trap(IllegalInstruction)
		}
		if v.NotFound != 0 && C(v.ip) == v.NotFound && !silent {
			fmt.Fprintf(v.out, "\nERROR: Word Not Found: `%s`\n\n", v.ExtractString(token))
		}
		if v.Interpret != 0 && C(v.ip) == v.Interpret && v.sp > 0 {
			token = v.tos()
		}

		v.word = v.mem[v.ip]
		if !code.Validate(int64(v.word)) {
			v.trap(IllegalInstruction)
		}
		if v.trace {
			log.Debugf("%7d  %s  sp=%d rp=%d", v.ip, code.Disassemble(int64(v.word)), v.sp, v.rp)
		}
		for _, op := range code.Unpack(int64(v.word)) {
			v.exec(op)
		}
		if v.sp < 0 || v.sp > StackDepth {
			v.sp = min(max(v.sp, 0), StackDepth)
			v.trap(StackLimits)
		}
		if err := v.budget.Charge(1); err != nil {
			v.trapErr(BudgetExceeded, err)
		}

		if v.halted {
			v.ip = ImageSize
			break
		}
		v.ip++
		if v.rp <= base {
			v.ip = ImageSize
			break
		}
	}
	return nil
}

// Evaluate hands one token to the image's interpreter.
func (v *VM[C]) Evaluate(src string, silent bool) error {
	if src == "" {
		return nil
	}
	v.Resolve()
	v.InjectString(src, TIB)
	if err := v.Push(C(TIB)); err != nil {
		return err
	}
	return v.Execute(v.Interpret, silent)
}

// Stopped reports whether the guest executed halt during the last
// top-level Execute.
func (v *VM[C]) Stopped() bool { return v.stopped }

func (v *VM[C]) IP() int { return v.ip }

func (v *VM[C]) Files() *files.Table { return v.files }
func (v *VM[C]) FPU() *fpu.Unit { return v.fpu }

func (v *VM[C]) Display() *display.Frame { return v.display }

// Close releases host resources held on behalf of the guest.
func (v *VM[C]) Close() error {
	return v.files.CloseAll()
}
