package nga

import (
	"errors"

	"retro/internal/source"
)

const (
	scriptArgCount = iota
	scriptArg
	scriptInclude
	scriptName
)

func (v *VM[C]) devScripting() {
	switch v.action() {
	case scriptArgCount: // ( -- n )
		v.push(C(len(v.args) - 1))
	case scriptArg: // ( buf n -- s )
		n := int64(v.pop())
		buf := v.pop()
		arg := ""
		if n >= 0 && n+1 < int64(len(v.args)) {
			arg = v.args[n+1]
		}
		v.push(v.InjectString(arg, buf))
	case scriptInclude: // ( name -- )
		v.include(v.ExtractString(v.pop()))
	case scriptName: // ( buf -- s )
		v.push(v.InjectString(v.args[0], v.pop()))
	default:
		v.trap(IllegalAction)
	}
}

// include evaluates a source file from inside a running word. A missing
// file is ignored; a trap in the included code aborts the outer run too.
func (v *VM[C]) include(path string) {
	err := source.Include(path, false, func(tok string) error {
		if err := v.Evaluate(tok, v.silent); err != nil {
			return err
		}
		if v.stopped {
			return errStopped
		}
		return nil
	})
	switch {
	case err == nil, errors.Is(err, errStopped):
	case errors.Is(err, source.ErrNotFound):
		log.Debugf("include: %v", err)
	default:
		var e *Error
		if errors.As(err, &e) {
			panic(e)
		}
		log.Errorf("include %q: %v", path, err)
	}
}

var errStopped = errors.New("halted")
