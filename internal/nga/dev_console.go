package nga

import (
	"errors"
	"io"
)

type flusher interface {
	Flush() error
}

// devOutput ( c -- )
func (v *VM[C]) devOutput() {
	c := v.pop()
	if _, err := v.out.Write([]byte{byte(c)}); err != nil {
		log.Debugf("output: %v", err)
	}
	if f, ok := v.out.(flusher); ok {
		_ = f.Flush()
	}
}

// devKeyboard ( -- c ) with DEL mapped to backspace and -1 at end of input.
func (v *VM[C]) devKeyboard() {
	c, err := v.in.ReadByte()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Debugf("keyboard: %v", err)
		}
		v.push(-1)
		return
	}
	if c == 127 {
		c = 8
	}
	v.push(C(c))
}
