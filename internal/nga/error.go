package nga

import "fmt"

// Errno names the reason for a fatal trap.
type Errno int

const (
	IllegalInstruction Errno = iota + 1
	StackLimits
	StackOverflow
	StackUnderflow
	RStackOverflow
	RStackUnderflow
	DivisionByZero
	IllegalDevice
	IllegalAction
	FloatStack
	ImageTooLarge
	ImageSaveFailed
	BudgetExceeded
	Exit
)

var strErrno = [...]string{
	IllegalInstruction: "invalid instruction",
	StackLimits:        "stack limits exceeded",
	StackOverflow:      "stack overflow",
	StackUnderflow:     "stack underflow",
	RStackOverflow:     "return stack overflow",
	RStackUnderflow:    "return stack underflow",
	DivisionByZero:     "division by zero",
	IllegalDevice:      "illegal device",
	IllegalAction:      "illegal device action",
	FloatStack:         "float stack error",
	ImageTooLarge:      "image too large",
	ImageSaveFailed:    "unable to save the image",
	BudgetExceeded:     "step limit exceeded",
	Exit:               "exit",
}

func (e Errno) Error() string {
	if e > 0 && int(e) < len(strErrno) {
		return strErrno[e]
	}
	return fmt.Sprintf("errno %d", int(e))
}

// Error describes a fatal trap and the machine state when it happened.
type Error struct {
	Errno  Errno
	Err    error   // host error behind the trap, if any
	Status int     // guest exit status when Errno is Exit
	Path   string  // file involved, for image errors
	IP     int64   // instruction pointer of the trapping word
	Word   int64   // the trapping word
	Stack  []int64 // data stack, bottom first
	RStack []int64 // return stack, bottom first
}

func (e *Error) Error() string {
	switch e.Errno {
	case IllegalInstruction:
		return fmt.Sprintf("Invalid instruction!\nAt %d, opcode %d", e.IP, e.Word)
	case StackLimits:
		return fmt.Sprintf("Stack Limits Exceeded!\nAt %d, opcode %d", e.IP, e.Word)
	case ImageSaveFailed:
		return fmt.Sprintf("Unable to save the image: %s!", e.Path)
	case ImageTooLarge:
		return fmt.Sprintf("%s: image too large (more than %d cells)", e.Path, ImageSize)
	case Exit:
		return fmt.Sprintf("exit %d", e.Status)
	}
	msg := fmt.Sprintf("%s at %d, opcode %d", e.Errno, e.IP, e.Word)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an *Error against a bare Errno.
func (e *Error) Is(target error) bool {
	errno, ok := target.(Errno)
	return ok && errno == e.Errno
}

// ExitCode is the process status a host should exit with.
func (e *Error) ExitCode() int {
	switch e.Errno {
	case Exit:
		return e.Status
	case ImageSaveFailed:
		return 2
	}
	return 1
}

// fault carries a trap raised together with a host error.
type fault struct {
	errno  Errno
	err    error
	status int
	path   string
}

func (v *VM[C]) trap(errno Errno) {
	panic(errno)
}

func (v *VM[C]) trapErr(errno Errno, err error) {
	panic(fault{errno: errno, err: err})
}

func (v *VM[C]) newError(f fault) *Error {
	e := &Error{
		Errno:  f.errno,
		Err:    f.err,
		Status: f.status,
		Path:   f.path,
		IP:     int64(v.ip),
		Word:   int64(v.word),
		Stack:  make([]int64, 0, max(v.sp, 0)),
		RStack: make([]int64, 0, max(v.rp, 0)),
	}
	for i := 1; i <= v.sp && i <= StackDepth; i++ {
		e.Stack = append(e.Stack, int64(v.data[i]))
	}
	for i := 1; i <= v.rp && i < Addresses; i++ {
		e.RStack = append(e.RStack, int64(v.address[i]))
	}
	return e
}

// recovered turns a value caught by recover into an error. Panics that
// are not traps are re-raised.
func (v *VM[C]) recovered(r any) error {
	switch t := r.(type) {
	case Errno:
		return v.newError(fault{errno: t})
	case fault:
		return v.newError(t)
	case *Error:
		return t
	}
	panic(r)
}
