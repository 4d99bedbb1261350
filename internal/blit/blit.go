// Package blit writes draw requests into a tile.Store and records the
// touched regions in a tile.DirtyRects.
//
// All positions are canvas pixel coordinates and wrap toroidally: a write
// that runs past the right edge continues at the left edge, and past the
// last row continues at row 0. The functions assume validated input; see
// tilecanvas.DrawRect.Validate for the rules.
package blit

import (
	"image"

	"github.com/gogpu/tilecanvas/internal/tile"
)

// Pixel writes a single value at pos, wrapped into the canvas.
func Pixel(s *tile.Store, d *tile.DirtyRects, pos image.Point, v uint32) {
	g := s.Grid()
	k, local := g.Locate(g.Wrap(pos))
	s.TileMut(k)[local.Y*g.TileSize().X+local.X] = v
	d.Mark(k, local, image.Pt(1, 1))
}

// Span writes px in canvas scan order starting at start.
//
// Each write is the longest run that stays within the remaining source, the
// current canvas row and the current tile row. The cursor moves to the next
// row at the right edge and back to row 0 past the last row, so a span longer
// than the canvas overwrites its own head.
func Span(s *tile.Store, d *tile.DirtyRects, start image.Point, px []uint32) {
	g := s.Grid()
	size, tw := g.Size(), g.TileSize().X
	cur := g.Wrap(start)

	for len(px) > 0 {
		k, local := g.Locate(cur)
		run := min(len(px), size.X-cur.X, tw-local.X)

		off := local.Y*tw + local.X
		copy(s.TileMut(k)[off:off+run], px[:run])
		d.Mark(k, local, image.Pt(run, 1))

		px = px[run:]
		cur.X += run
		if cur.X == size.X {
			cur.X = 0
			cur.Y++
			if cur.Y == size.Y {
				cur.Y = 0
			}
		}
	}
}
