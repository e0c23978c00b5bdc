// Package runtimeio handles the terminal side of an interactive session.
package runtimeio

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"

	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("input is not a terminal")

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Session is the input side of a listener. In character mode the terminal
// is put in raw mode and typed characters are echoed by the caller.
type Session struct {
	in       *bufio.Reader
	fd       int
	state    *term.State
	charMode bool
}

// Open starts a session on f. When charMode is set f must be a terminal.
func Open(f *os.File, charMode bool) (*Session, error) {
	s := &Session{in: bufio.NewReader(f), fd: int(f.Fd()), charMode: charMode}
	if !charMode {
		return s, nil
	}
	if !term.IsTerminal(s.fd) {
		return nil, ErrNotTerminal
	}
	st, err := term.MakeRaw(s.fd)
	if err != nil {
		return nil, err
	}
	s.state = st
	return s, nil
}

// NewSession reads from r without touching any terminal.
func NewSession(r io.Reader) *Session {
	return &Session{in: bufio.NewReader(r), fd: -1}
}

func (s *Session) ReadByte() (byte, error) {
	c, err := s.in.ReadByte()
	if err != nil {
		return 0, err
	}
	// raw mode delivers CR for enter and ^D instead of end of file
	if s.charMode {
		switch c {
		case '\r':
			c = '\n'
		case 4:
			return 0, io.EOF
		}
	}
	return c, nil
}

// Read hands out one byte at a time so that a reader layered on top of
// the session never buffers input the listener has not seen yet.
func (s *Session) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	c, err := s.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = c
	return 1, nil
}

// Output wraps w so that line feeds also return the carriage while the
// terminal is raw.
func (s *Session) Output(w io.Writer) io.Writer {
	if s.state == nil {
		return w
	}
	return crlfWriter{w}
}

type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if !bytes.Contains(p, []byte{'\n'}) {
		return c.w.Write(p)
	}
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte{'\n'}, []byte{'\r', '\n'})); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Echo reports whether typed characters must be echoed by the program.
func (s *Session) Echo() bool { return s.charMode }

// Close restores the terminal.
func (s *Session) Close() error {
	if s.state == nil {
		return nil
	}
	st := s.state
	s.state = nil
	return term.Restore(s.fd, st)
}
