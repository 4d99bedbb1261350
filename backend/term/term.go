// Package term shows a tilecanvas mirror in a terminal using tcell.
//
// Each terminal cell shows two canvas rows with the upper half block
// character: the foreground color is the upper pixel, the background color
// the lower one.
package term

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/tilecanvas"
	"github.com/gogpu/tilecanvas/backend/mirror"
)

const halfBlock = '▀'

// FrameFunc produces the upload ops for one frame.
type FrameFunc func() []tilecanvas.UploadOp

// Preview draws a mirror onto a tcell screen.
type Preview struct {
	screen tcell.Screen
	mirror *mirror.Mirror
}

// New creates a preview drawing m onto screen. The screen must already be
// initialized.
func New(screen tcell.Screen, m *mirror.Mirror) *Preview {
	return &Preview{screen: screen, mirror: m}
}

// Draw scales the mirror to the screen and shows it.
func (p *Preview) Draw() {
	w, h := p.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}
	img := p.mirror.Scaled(image.Pt(w, h*2))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			top, bot := img.NRGBAAt(x, 2*y), img.NRGBAAt(x, 2*y+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
			p.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
	p.screen.Show()
}

// Run calls frame at the given rate, applies its ops to the mirror and
// redraws until ctx is done or the user presses q, Escape or Ctrl-C.
func (p *Preview) Run(ctx context.Context, fps int, frame FrameFunc) error {
	if fps <= 0 {
		return fmt.Errorf("term: invalid frame rate %d", fps)
	}

	quit := make(chan struct{})
	go p.handleInput(quit)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			tilecanvas.Logger().Info("term: preview closed by user")
			return nil
		case <-ticker.C:
			p.mirror.Apply(frame())
			p.Draw()
		}
	}
}

func (p *Preview) handleInput(quit chan<- struct{}) {
	defer close(quit)
	for {
		switch ev := p.screen.PollEvent().(type) {
		case nil:
			// Screen finalized.
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				return
			}
		case *tcell.EventResize:
			p.screen.Sync()
		}
	}
}
