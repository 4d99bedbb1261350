// Package noise produces seeded random draw requests for exercising a
// tilecanvas.Canvas.
package noise

import (
	"image"
	"math/rand/v2"

	"github.com/gogpu/tilecanvas"
)

// Generator emits random requests within a canvas. The same seed always
// produces the same sequence.
type Generator struct {
	rng    *rand.Rand
	canvas image.Point

	// MaxRect bounds the size of generated rects on each axis.
	MaxRect image.Point
	// MaxSpan bounds the length of generated spans.
	MaxSpan int
}

// New returns a generator for a canvas of the given size.
func New(seed uint64, canvas image.Point) *Generator {
	var key [32]byte
	for i := 0; i < 8; i++ {
		key[i] = byte(seed >> (8 * i))
	}
	return &Generator{
		rng:     rand.New(rand.NewChaCha8(key)),
		canvas:  canvas,
		MaxRect: image.Pt(max(1, canvas.X/8), max(1, canvas.Y/8)),
		MaxSpan: max(1, canvas.X*2),
	}
}

// Color returns a random opaque color.
func (g *Generator) Color() uint32 {
	return g.rng.Uint32() | 0xff000000
}

// Pos returns a random position, which may lie outside the canvas.
func (g *Generator) Pos() image.Point {
	return image.Pt(g.rng.IntN(3*g.canvas.X)-g.canvas.X, g.rng.IntN(3*g.canvas.Y)-g.canvas.Y)
}

// Pixel returns a random pixel request.
func (g *Generator) Pixel() tilecanvas.DrawPixel {
	return tilecanvas.DrawPixel{Pos: g.Pos(), Color: g.Color()}
}

// Rect returns a random rect filled with a gradient from one random color.
func (g *Generator) Rect() tilecanvas.DrawRect {
	limit := image.Pt(max(1, min(g.MaxRect.X, g.canvas.X)), max(1, min(g.MaxRect.Y, g.canvas.Y)))
	size := image.Pt(1+g.rng.IntN(limit.X), 1+g.rng.IntN(limit.Y))
	base := g.Color()
	px := make([]uint32, size.X*size.Y)
	for i := range px {
		px[i] = base ^ uint32(i&0xff)
	}
	return tilecanvas.DrawRect{Start: g.Pos(), Size: size, Pixels: px}
}

// Span returns a random span of one color.
func (g *Generator) Span() tilecanvas.DrawSpan {
	px := make([]uint32, 1+g.rng.IntN(max(1, g.MaxSpan)))
	c := g.Color()
	for i := range px {
		px[i] = c
	}
	return tilecanvas.DrawSpan{Start: g.Pos(), Pixels: px}
}

// Fill appends the given number of random requests of each kind to b.
func (g *Generator) Fill(b *tilecanvas.Batch, pixels, rects, spans int) {
	for i := 0; i < pixels; i++ {
		b.Pixels = append(b.Pixels, g.Pixel())
	}
	for i := 0; i < rects; i++ {
		b.Rects = append(b.Rects, g.Rect())
	}
	for i := 0; i < spans; i++ {
		b.Spans = append(b.Spans, g.Span())
	}
}
