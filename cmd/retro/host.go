package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"retro/internal/code"
	"retro/internal/display"
	"retro/internal/gfx"
	"retro/internal/kernel"
	"retro/internal/limits"
	"retro/internal/nga"
	"retro/internal/runtimeio"
	"retro/internal/source"
)

// errHalt ends a run after the guest executes bye.
var errHalt = errors.New("halted")

type host struct {
	vm      *nga.VM[cell]
	opts    *options
	out     io.Writer
	session *runtimeio.Session
}

func runHost(o *options, stdin io.Reader, stdout io.Writer) int {
	session, err := openSession(o, stdin)
	if err != nil {
		fmt.Fprintln(stdout, "terminal error:", err)
		return 1
	}
	defer session.Close()
	out := session.Output(stdout)

	frame := display.New()
	h, err := newHost(o, session, out, frame)
	if err != nil {
		fmt.Fprintln(out, "load error:", err)
		return 1
	}
	defer func() {
		if err := h.vm.Close(); err != nil {
			log.Warningf("closing files: %v", err)
		}
	}()

	switch {
	case o.dis:
		h.disassemble()
		return 0
	case o.words:
		h.listWords()
		return 0
	}

	if o.gfx {
		err = gfx.Run(frame, "retro", h.main)
	} else {
		err = h.main()
	}
	return h.exitCode(err)
}

func openSession(o *options, stdin io.Reader) (*runtimeio.Session, error) {
	if !o.charMode {
		return runtimeio.NewSession(stdin), nil
	}
	f, ok := stdin.(*os.File)
	if !ok {
		return nil, runtimeio.ErrNotTerminal
	}
	return runtimeio.Open(f, true)
}

func newHost(o *options, session *runtimeio.Session, out io.Writer, frame *display.Frame) (*host, error) {
	var budget *limits.Budget
	if o.steps > 0 {
		budget = limits.NewBudget(o.steps)
	}
	args := o.args
	if len(args) == 0 {
		args = []string{"retro"}
	}
	v := nga.New[cell](nga.Options{
		Stdout:   out,
		Stdin:    session,
		Args:     args,
		RunTests: o.tests,
		Budget:   budget,
		Trace:    o.verbosity >= 3,
		Display:  frame,
	})

	var (
		n   int
		err error
	)
	if o.image != "" {
		n, err = v.Load(o.image, kernel.Image())
	} else {
		n, err = v.LoadWords(kernel.Image())
	}
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded %d cells", n)

	v.Resolve()
	if v.Interpret == 0 {
		return nil, errors.New("image has no interpret word")
	}
	return &host{vm: v, opts: o, out: out, session: session}, nil
}

// main runs the -f files, then the script, then the listener when asked
// for or when there was nothing else to run.
func (h *host) main() error {
	for _, f := range h.opts.files {
		err := h.include(f)
		if errors.Is(err, source.ErrNotFound) {
			log.Warningf("%v", err)
			continue
		}
		if err != nil {
			return err
		}
	}
	if h.opts.script != "" {
		if err := h.include(h.opts.script); err != nil {
			return err
		}
	}
	if h.opts.interactive || (h.opts.script == "" && len(h.opts.files) == 0) {
		return h.listen()
	}
	if !h.opts.silent {
		h.vm.DumpStack(h.out)
	}
	return nil
}

func (h *host) include(path string) error {
	return source.Include(path, h.opts.tests, h.eval)
}

func (h *host) eval(tok string) error {
	if err := h.vm.Evaluate(tok, false); err != nil {
		return err
	}
	if h.vm.Stopped() {
		return errHalt
	}
	return nil
}

func (h *host) listen() error {
	var echo io.Writer
	if h.session.Echo() && !h.opts.silent {
		echo = h.out
	}
	var prompt func()
	if !h.opts.silent {
		prompt = func() { fmt.Fprint(h.out, "ok ") }
	}
	return source.Listen(h.session, echo, h.eval, prompt)
}

func (h *host) exitCode(err error) int {
	var e *nga.Error
	switch {
	case err == nil, errors.Is(err, errHalt), errors.Is(err, gfx.ErrClosed):
		return 0
	case errors.As(err, &e):
		if e.Errno != nga.Exit {
			fmt.Fprintf(h.out, "\n%s\n", e.Error())
		}
		return e.ExitCode()
	}
	fmt.Fprintln(h.out, "run error:", err)
	return 1
}

func (h *host) disassemble() {
	heap := int(h.vm.Fetch(3))
	cells := make([]int64, 0, max(heap, 0))
	for i := 0; i < heap && i <= nga.ImageSize; i++ {
		cells = append(cells, int64(h.vm.Fetch(i)))
	}
	fmt.Fprint(h.out, code.Listing(cells, 0))
}

func (h *host) listWords() {
	for _, hd := range h.vm.Headers() {
		fmt.Fprintf(h.out, "%-24s %7d\n", hd.Name, hd.XT)
	}
}
