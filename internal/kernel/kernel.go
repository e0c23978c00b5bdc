// Package kernel holds the default image loaded when no image file is found.
package kernel

import (
	_ "embed"
	"sync"

	"retro/internal/asm"
)

//go:embed kernel.muri
var source string

var (
	once sync.Once
	prog *asm.Program
)

func load() *asm.Program {
	once.Do(func() {
		p, err := asm.Assemble("kernel.muri", source)
		if err != nil {
			panic("kernel: " + err.Error())
		}
		prog = p
	})
	return prog
}

// Image returns a fresh copy of the kernel cells.
func Image() []int64 {
	p := load()
	out := make([]int64, len(p.Cells))
	copy(out, p.Cells)
	return out
}

// Address returns the address of a kernel label.
func Address(label string) (int64, bool) {
	v, ok := load().Labels[label]
	return v, ok
}

func Source() string { return source }
