// Package display is the framebuffer behind the display device. It is
// headless; internal/gfx can show it in a window.
package display

import (
	"image"
	"image/color"
	"sync"
)

const MaxSide = 4096

type Frame struct {
	mu        sync.Mutex
	back      *image.RGBA
	front     *image.RGBA
	presented uint64
	key       int64
}

func New() *Frame { return &Frame{} }

// Open allocates a w by h framebuffer, cleared to black. Sides are clamped
// to [1, MaxSide].
func (f *Frame) Open(w, h int64) {
	w, h = clampSide(w), clampSide(h)
	r := image.Rect(0, 0, int(w), int(h))
	f.mu.Lock()
	f.back = image.NewRGBA(r)
	f.front = image.NewRGBA(r)
	fill(f.back, color.RGBA{A: 255})
	fill(f.front, color.RGBA{A: 255})
	f.mu.Unlock()
}

func clampSide(v int64) int64 {
	if v < 1 {
		return 1
	}
	if v > MaxSide {
		return MaxSide
	}
	return v
}

// RGB unpacks a 0xRRGGBB cell into an opaque color.
func RGB(v int64) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func fill(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
}

// Pixel sets one pixel in the back buffer. Out of range coordinates and
// an unopened frame are ignored.
func (f *Frame) Pixel(x, y, rgb int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.back == nil {
		return
	}
	b := f.back.Bounds()
	if x < 0 || y < 0 || x >= int64(b.Dx()) || y >= int64(b.Dy()) {
		return
	}
	f.back.SetRGBA(int(x), int(y), RGB(rgb))
}

func (f *Frame) Clear(rgb int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.back != nil {
		fill(f.back, RGB(rgb))
	}
}

// Present copies the back buffer to the front buffer read by viewers.
func (f *Frame) Present() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.back == nil {
		return
	}
	copy(f.front.Pix, f.back.Pix)
	f.presented++
}

func (f *Frame) Size() (w, h int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.back == nil {
		return 0, 0
	}
	b := f.back.Bounds()
	return int64(b.Dx()), int64(b.Dy())
}

// Snapshot returns a copy of the last presented frame and its sequence
// number, or nil before the first Open.
func (f *Frame) Snapshot() (*image.RGBA, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.front == nil {
		return nil, f.presented
	}
	img := image.NewRGBA(f.front.Rect)
	copy(img.Pix, f.front.Pix)
	return img, f.presented
}

// SetKey records the last key pressed in a viewer.
func (f *Frame) SetKey(c int64) {
	f.mu.Lock()
	f.key = c
	f.mu.Unlock()
}

// Key returns and clears the last key pressed, or 0.
func (f *Frame) Key() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.key
	f.key = 0
	return c
}
