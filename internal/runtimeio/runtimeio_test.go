package runtimeio

import (
	"io"
	"strings"
	"testing"
)

func TestSessionReadsBytes(t *testing.T) {
	s := NewSession(strings.NewReader("ab"))
	defer s.Close()
	for _, want := range []byte("ab") {
		c, err := s.ReadByte()
		if err != nil || c != want {
			t.Fatalf("got %q, %v", c, err)
		}
	}
	if _, err := s.ReadByte(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	if s.Echo() {
		t.Fatalf("line mode must not echo")
	}
}

func TestCharModeTranslatesControlKeys(t *testing.T) {
	s := NewSession(strings.NewReader("x\r\x04y"))
	s.charMode = true
	c, _ := s.ReadByte()
	if c != 'x' {
		t.Fatalf("got %q", c)
	}
	if c, _ := s.ReadByte(); c != '\n' {
		t.Fatalf("enter should read as newline, got %q", c)
	}
	if _, err := s.ReadByte(); err != io.EOF {
		t.Fatalf("^D should end input, got %v", err)
	}
}

func TestReadIsOneByteAtATime(t *testing.T) {
	s := NewSession(strings.NewReader("xyz"))
	buf := make([]byte, 8)
	n, err := s.Read(buf)
	if err != nil || n != 1 || buf[0] != 'x' {
		t.Fatalf("read %d %q %v", n, buf[:n], err)
	}
}

func TestCRLFWriter(t *testing.T) {
	var out strings.Builder
	w := crlfWriter{&out}
	n, err := w.Write([]byte("a\nb"))
	if err != nil || n != 3 {
		t.Fatalf("wrote %d, %v", n, err)
	}
	if out.String() != "a\r\nb" {
		t.Fatalf("got %q", out.String())
	}
	s := NewSession(strings.NewReader(""))
	if s.Output(&out) != &out {
		t.Fatalf("line mode output must not be wrapped")
	}
}
