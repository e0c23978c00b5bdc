package nga

import (
	"crypto/rand"
	"encoding/binary"
)

// devRandom ( -- n ) pushes a non-negative random cell.
func (v *VM[C]) devRandom() {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		v.trapErr(IllegalAction, err)
	}
	r := C(binary.BigEndian.Uint64(b[:]))
	if r < 0 {
		r = -r
	}
	if r < 0 {
		_, r = Limits[C]()
	}
	v.push(r)
}

// Display device actions.
const (
	displayOpen = iota
	displayPixel
	displayClear
	displayPresent
	displayWidth
	displayHeight
	displayKey
)

func (v *VM[C]) devDisplay() {
	d := v.display
	switch v.action() {
	case displayOpen: // ( w h -- )
		h := v.pop()
		w := v.pop()
		d.Open(int64(w), int64(h))
	case displayPixel: // ( x y rgb -- )
		rgb := v.pop()
		y := v.pop()
		x := v.pop()
		d.Pixel(int64(x), int64(y), int64(rgb))
	case displayClear: // ( rgb -- )
		d.Clear(int64(v.pop()))
	case displayPresent:
		d.Present()
	case displayWidth:
		w, _ := d.Size()
		v.push(C(w))
	case displayHeight:
		_, h := d.Size()
		v.push(C(h))
	case displayKey:
		v.push(C(d.Key()))
	default:
		v.trap(IllegalAction)
	}
}
