// Package gfx presents a display.Frame in an ebiten window and feeds key
// presses back to it.
package gfx

import (
	"errors"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tliron/commonlog"

	"retro/internal/display"
)

var log = commonlog.GetLogger("retro.gfx")

// ErrClosed is returned by Run when the window is closed before the work
// function finishes.
var ErrClosed = errors.New("display window closed")

const (
	defaultWidth  = 640
	defaultHeight = 480
)

type state struct {
	mu      sync.Mutex
	done    bool
	err     error
	tex     *ebiten.Image
	texW    int
	texH    int
	drawn   uint64
	pending []rune
}

type game struct {
	frame *display.Frame
	state *state
}

// Run opens a window titled title, runs work on its own goroutine and
// shows every frame presented through frame. It returns work's error once
// work ends, or ErrClosed if the user closes the window first.
func Run(frame *display.Frame, title string, work func() error) error {
	s := &state{}
	go func() {
		err := work()
		s.mu.Lock()
		s.done, s.err = true, err
		s.mu.Unlock()
	}()

	ebiten.SetWindowSize(defaultWidth, defaultHeight)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := &game{frame: frame, state: s}
	err := ebiten.RunGame(g)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil:
		return err
	case s.done:
		return s.err
	}
	return ErrClosed
}

func (g *game) Update() error {
	s := g.state
	s.pending = ebiten.AppendInputChars(s.pending[:0])
	for _, r := range s.pending {
		g.frame.SetKey(int64(r))
	}
	for k, c := range specialKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.frame.SetKey(c)
		}
	}

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done {
		log.Debug("work finished, closing window")
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	s := g.state
	img, seq := g.frame.Snapshot()
	if img == nil {
		screen.Fill(color.Black)
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if s.tex == nil || s.texW != w || s.texH != h {
		s.tex = ebiten.NewImage(w, h)
		s.texW, s.texH = w, h
		s.drawn = 0
	}
	if seq != s.drawn {
		s.tex.WritePixels(img.Pix)
		s.drawn = seq
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sw)/float64(w), float64(sh)/float64(h))
	screen.DrawImage(s.tex, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.frame.Size()
	if w <= 0 || h <= 0 {
		return defaultWidth, defaultHeight
	}
	return int(w), int(h)
}

// keys that produce no input characters but that guests read as codes
var specialKeys = map[ebiten.Key]int64{
	ebiten.KeyEnter:      10,
	ebiten.KeyBackspace:  8,
	ebiten.KeyTab:        9,
	ebiten.KeyEscape:     27,
	ebiten.KeyArrowLeft:  1000,
	ebiten.KeyArrowRight: 1001,
	ebiten.KeyArrowUp:    1002,
	ebiten.KeyArrowDown:  1003,
}
