// Package files keeps the table of host files and pipes opened by guest
// programs. Handles are small integers; 0 never names an open file.
package files

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/tliron/commonlog"
)

const MaxOpen = 128

// File open modes.
const (
	ModeRead      = 0 // rb
	ModeWrite     = 1 // w
	ModeAppend    = 2 // a
	ModeReadWrite = 3 // rb+
)

var log = commonlog.GetLogger("retro.files")

var ErrTableFull = errors.New("no free file handles")

type entry struct {
	f *os.File

	// pipes only
	cmd *exec.Cmd
	r   *bufio.Reader
	w   io.WriteCloser
}

func (e *entry) pipe() bool { return e.cmd != nil }

type Table struct {
	slots [MaxOpen]*entry
}

func NewTable() *Table { return &Table{} }

func (t *Table) free() (int, error) {
	for h := 1; h < MaxOpen; h++ {
		if t.slots[h] == nil {
			return h, nil
		}
	}
	return 0, ErrTableFull
}

func (t *Table) get(h int64) *entry {
	if h < 1 || h >= MaxOpen {
		return nil
	}
	return t.slots[h]
}

// Open returns a handle for name, or 0 if it cannot be opened.
func (t *Table) Open(name string, mode int64) int64 {
	var flag int
	switch mode {
	case ModeRead:
		flag = os.O_RDONLY
	case ModeWrite:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ModeAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case ModeReadWrite:
		flag = os.O_RDWR
	default:
		log.Debugf("open %q: unknown mode %d", name, mode)
		return 0
	}
	h, err := t.free()
	if err != nil {
		log.Debugf("open %q: %v", name, err)
		return 0
	}
	f, err := os.OpenFile(name, flag, 0o644)
	if err != nil {
		log.Debugf("open %q: %v", name, err)
		return 0
	}
	t.slots[h] = &entry{f: f}
	return int64(h)
}

// OpenPipe runs cmd through /bin/sh and returns a handle connected to its
// stdout (mode 0), stdin (mode 1) or both (mode 3).
func (t *Table) OpenPipe(command string, mode int64) int64 {
	if mode != ModeRead && mode != ModeWrite && mode != ModeReadWrite {
		log.Debugf("popen %q: unknown mode %d", command, mode)
		return 0
	}
	h, err := t.free()
	if err != nil {
		log.Debugf("popen %q: %v", command, err)
		return 0
	}

	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Stderr = os.Stderr
	e := &entry{cmd: cmd}
	if mode == ModeRead || mode == ModeReadWrite {
		out, err := cmd.StdoutPipe()
		if err != nil {
			log.Debugf("popen %q: %v", command, err)
			return 0
		}
		e.r = bufio.NewReader(out)
	} else {
		cmd.Stdout = os.Stdout
	}
	if mode == ModeWrite || mode == ModeReadWrite {
		in, err := cmd.StdinPipe()
		if err != nil {
			log.Debugf("popen %q: %v", command, err)
			return 0
		}
		e.w = in
	}
	if err := cmd.Start(); err != nil {
		log.Debugf("popen %q: %v", command, err)
		return 0
	}
	t.slots[h] = e
	return int64(h)
}

func (t *Table) Close(h int64) {
	e := t.get(h)
	if e == nil {
		return
	}
	t.slots[h] = nil
	if err := e.close(); err != nil {
		log.Debugf("close %d: %v", h, err)
	}
}

func (e *entry) close() error {
	if !e.pipe() {
		return e.f.Close()
	}
	if e.w != nil {
		_ = e.w.Close()
	}
	if e.r != nil {
		// drain so the child does not block on a full pipe
		_, _ = io.Copy(io.Discard, e.r)
	}
	return e.cmd.Wait()
}

// Read returns the next byte, or 0 at end of file and on errors.
func (t *Table) Read(h int64) int64 {
	e := t.get(h)
	if e == nil {
		return 0
	}
	if e.pipe() {
		if e.r == nil {
			return 0
		}
		b, err := e.r.ReadByte()
		if err != nil {
			return 0
		}
		return int64(b)
	}
	var buf [1]byte
	n, err := e.f.Read(buf[:])
	if n == 0 || (err != nil && !errors.Is(err, io.EOF)) {
		return 0
	}
	return int64(buf[0])
}

func (t *Table) Write(h int64, c int64) {
	t.WriteBytes(h, []byte{byte(c)})
}

func (t *Table) WriteBytes(h int64, p []byte) {
	e := t.get(h)
	if e == nil {
		return
	}
	var err error
	if e.pipe() {
		if e.w == nil {
			return
		}
		_, err = e.w.Write(p)
	} else {
		_, err = e.f.Write(p)
	}
	if err != nil {
		log.Debugf("write %d: %v", h, err)
	}
}

// Position reports the current offset; pipes report 0.
func (t *Table) Position(h int64) int64 {
	e := t.get(h)
	if e == nil || e.pipe() {
		return 0
	}
	off, err := e.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	return off
}

func (t *Table) SetPosition(h int64, off int64) {
	e := t.get(h)
	if e == nil || e.pipe() {
		return
	}
	if _, err := e.f.Seek(off, io.SeekStart); err != nil {
		log.Debugf("seek %d: %v", h, err)
	}
}

// Size returns the length of the file in bytes, or 0 for directories,
// pipes and invalid handles.
func (t *Table) Size(h int64) int64 {
	e := t.get(h)
	if e == nil || e.pipe() {
		return 0
	}
	st, err := e.f.Stat()
	if err != nil || st.IsDir() {
		return 0
	}
	return st.Size()
}

func (t *Table) Delete(name string) bool {
	if err := os.Remove(name); err != nil {
		log.Debugf("delete %q: %v", name, err)
		return false
	}
	return true
}

func (t *Table) Flush(h int64) {
	e := t.get(h)
	if e == nil || e.pipe() {
		return
	}
	if err := e.f.Sync(); err != nil {
		log.Debugf("flush %d: %v", h, err)
	}
}

// Count reports the number of live handles.
func (t *Table) Count() int {
	n := 0
	for _, e := range t.slots {
		if e != nil {
			n++
		}
	}
	return n
}

func (t *Table) CloseAll() error {
	var errs []error
	for h, e := range t.slots {
		if e == nil {
			continue
		}
		t.slots[h] = nil
		if err := e.close(); err != nil {
			errs = append(errs, fmt.Errorf("handle %d: %w", h, err))
		}
	}
	return errors.Join(errs...)
}
