package display

import (
	"image/color"
	"testing"
)

func TestUnopenedFrameIsInert(t *testing.T) {
	f := New()
	f.Pixel(0, 0, 0xffffff)
	f.Clear(0)
	f.Present()
	if w, h := f.Size(); w != 0 || h != 0 {
		t.Fatalf("size of unopened frame = %dx%d", w, h)
	}
	if img, _ := f.Snapshot(); img != nil {
		t.Fatalf("snapshot before open should be nil")
	}
}

func TestPixelOnlyVisibleAfterPresent(t *testing.T) {
	f := New()
	f.Open(4, 3)
	if w, h := f.Size(); w != 4 || h != 3 {
		t.Fatalf("size = %dx%d", w, h)
	}
	f.Pixel(1, 2, 0x102030)
	f.Pixel(-1, 0, 0xffffff)
	f.Pixel(4, 0, 0xffffff)

	img, seq := f.Snapshot()
	if seq != 0 || img.RGBAAt(1, 2) != (color.RGBA{A: 255}) {
		t.Fatalf("back buffer leaked before present")
	}

	f.Present()
	img, seq = f.Snapshot()
	if seq != 1 {
		t.Fatalf("present count = %d", seq)
	}
	if got := img.RGBAAt(1, 2); got != (color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}) {
		t.Fatalf("pixel = %v", got)
	}
}

func TestClearAndClamp(t *testing.T) {
	f := New()
	f.Open(0, MaxSide+10)
	if w, h := f.Size(); w != 1 || h != MaxSide {
		t.Fatalf("clamped size = %dx%d", w, h)
	}
	f.Open(2, 2)
	f.Clear(0xff0000)
	f.Present()
	img, _ := f.Snapshot()
	if img.RGBAAt(1, 1) != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("clear color not applied")
	}
}

func TestKeyIsConsumed(t *testing.T) {
	f := New()
	f.SetKey('a')
	if f.Key() != 'a' || f.Key() != 0 {
		t.Fatalf("key should be returned once")
	}
}
