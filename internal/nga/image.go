package nga

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// Prepare clears memory, both stacks and the registers.
func (v *VM[C]) Prepare() {
	clear(v.mem)
	clear(v.data[:])
	clear(v.address[:])
	v.ip, v.sp, v.rp = 0, 0, 0
	v.word = 0
	v.halted, v.stopped = false, false
	v.Dictionary, v.Interpret, v.NotFound = 0, 0, 0
	v.fpu.Reset()
}

// LoadWords copies words into memory from address 0 and returns how many
// cells were loaded.
func (v *VM[C]) LoadWords(words []int64) (int, error) {
	if len(words) > ImageSize {
		return 0, &Error{Errno: ImageTooLarge, Path: "<memory>"}
	}
	for i, w := range words {
		v.mem[i] = C(w)
	}
	return len(words), nil
}

// Load reads a raw image: cells of the VM's width in host byte order with
// no header. When path cannot be opened, fallback is loaded instead.
func (v *VM[C]) Load(path string, fallback []int64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		log.Debugf("image %q: %v, using the built-in image", path, err)
		return v.LoadWords(fallback)
	}
	defer f.Close()

	size := Bits[C]() / 8
	r := bufio.NewReader(f)
	buf := make([]byte, size)
	n := 0
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return n, err
		}
		if n >= ImageSize {
			return n, &Error{Errno: ImageTooLarge, Path: path}
		}
		if size == 4 {
			v.mem[n] = C(int32(binary.NativeEndian.Uint32(buf)))
		} else {
			v.mem[n] = C(int64(binary.NativeEndian.Uint64(buf)))
		}
		n++
	}
	return n, nil
}

// Save writes cells 0 through the heap pointer in cell 3.
func (v *VM[C]) Save(path string) error {
	heap := int(v.mem[3])
	if heap < 0 {
		heap = 0
	}
	if heap > ImageSize {
		heap = ImageSize
	}

	f, err := os.Create(path)
	if err != nil {
		return &Error{Errno: ImageSaveFailed, Err: err, Path: path}
	}
	w := bufio.NewWriter(f)
	size := Bits[C]() / 8
	buf := make([]byte, size)
	for _, c := range v.mem[:heap+1] {
		if size == 4 {
			binary.NativeEndian.PutUint32(buf, uint32(c))
		} else {
			binary.NativeEndian.PutUint64(buf, uint64(c))
		}
		if _, err := w.Write(buf); err != nil {
			f.Close()
			return &Error{Errno: ImageSaveFailed, Err: err, Path: path}
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return &Error{Errno: ImageSaveFailed, Err: err, Path: path}
	}
	return f.Close()
}

// Fetch reads memory for hosts and tests; out of range reads return 0.
func (v *VM[C]) Fetch(addr int) C { return v.load(addr) }

// Store writes memory for hosts and tests; out of range writes are ignored.
func (v *VM[C]) Store(addr int, x C) {
	if addr >= 0 && addr <= ImageSize {
		v.mem[addr] = x
	}
}

// devImage ( name -- ) saves the image.
func (v *VM[C]) devImage() {
	name := v.ExtractString(v.pop())
	if err := v.Save(name); err != nil {
		var e *Error
		if errors.As(err, &e) {
			panic(fault{errno: e.Errno, err: e.Err, path: e.Path})
		}
		v.trapErr(ImageSaveFailed, err)
	}
}
