// Package source reads whitespace-delimited tokens and evaluates the fenced
// code blocks of literate source files.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrNotFound = errors.New("source file not found")

// MaxToken bounds a single token; longer runs are split.
const MaxToken = 64 * 1024

// ReadToken returns the next token from r. A token ends at space, CR, LF,
// NUL or end of input; the delimiter is consumed. Backspace and DEL erase
// the previous byte. When echo is non-nil every byte read is copied to it,
// and erasures are echoed as BS SP BS. The returned error is io.EOF only
// when input ended; the token read so far is still returned with it.
func ReadToken(r io.ByteReader, echo io.Writer) (string, error) {
	var tok []byte
	for {
		c, err := r.ReadByte()
		if err != nil {
			return string(tok), err
		}
		if echo != nil {
			_, _ = echo.Write([]byte{c})
		}
		switch c {
		case ' ', '\n', '\r', 0:
			return string(tok), nil
		case 8, 127:
			if len(tok) > 0 {
				tok = tok[:len(tok)-1]
				if echo != nil {
					_, _ = echo.Write([]byte{8, ' ', 8})
				}
				continue
			}
		}
		tok = append(tok, c)
		if len(tok) >= MaxToken {
			return string(tok), nil
		}
	}
}

type fence int

const (
	noFence fence = iota
	codeFence
	testFence
)

func fenceOf(tok string) fence {
	switch {
	case strings.HasPrefix(tok, "~~~"):
		return codeFence
	case strings.HasPrefix(tok, "```"):
		return testFence
	}
	return noFence
}

// Run evaluates every token inside ~~~ blocks read from r. ``` blocks are
// evaluated only when runTests is set. It stops at the first error
// returned by eval.
func Run(r io.Reader, runTests bool, eval func(tok string) error) error {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	inBlock := false
	for {
		tok, err := ReadToken(br, nil)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		switch fenceOf(tok) {
		case codeFence:
			inBlock = !inBlock
		case testFence:
			if runTests {
				inBlock = !inBlock
			}
		default:
			if inBlock && tok != "" {
				if evalErr := eval(tok); evalErr != nil {
					return evalErr
				}
			}
		}
		if err != nil {
			return nil
		}
	}
}

// Include opens path and hands it to Run. A missing file yields ErrNotFound
// without evaluating anything.
func Include(path string, runTests bool, eval func(tok string) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return err
	}
	defer f.Close()
	return Run(bufio.NewReader(f), runTests, eval)
}

// lastByte remembers the most recent byte read through it.
type lastByte struct {
	r io.ByteReader
	c byte
}

func (l *lastByte) ReadByte() (byte, error) {
	c, err := l.r.ReadByte()
	if err == nil {
		l.c = c
	}
	return c, err
}

// Listen evaluates every token read from r until input ends or eval
// fails. prompt, when non-nil, runs before the first token and after each
// line of input.
func Listen(r io.ByteReader, echo io.Writer, eval func(tok string) error, prompt func()) error {
	lr := &lastByte{r: r}
	if prompt != nil {
		prompt()
	}
	for {
		tok, err := ReadToken(lr, echo)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if tok != "" {
			if evalErr := eval(tok); evalErr != nil {
				return evalErr
			}
		}
		if err != nil {
			return nil
		}
		if prompt != nil && (lr.c == '\n' || lr.c == '\r') {
			prompt()
		}
	}
}
