package blit

import (
	"image"

	"github.com/gogpu/tilecanvas/internal/tile"
)

// SubRect is one non-wrapping piece of a toroidal rectangle.
type SubRect struct {
	// Src is the offset of the piece inside the source rectangle.
	Src image.Point
	// Dst is the canvas position of the piece's first pixel.
	Dst image.Point
	// Size is the extent of the piece. Never zero.
	Size image.Point
}

// SplitTorus appends to dst the pieces of the size-sized rectangle at start
// on a toroidal canvas of the given size and returns the extended slice.
//
// At most four pieces are produced: the in-bounds piece, the piece wrapped
// past the right edge, the piece wrapped past the last row, and the corner
// piece wrapped past both. size must not exceed canvas on either axis.
func SplitTorus(dst []SubRect, canvas, start, size image.Point) []SubRect {
	s := image.Pt(wrap(start.X, canvas.X), wrap(start.Y, canvas.Y))
	in := image.Pt(min(size.X, canvas.X-s.X), min(size.Y, canvas.Y-s.Y))
	out := size.Sub(in)

	pieces := [4]SubRect{
		{Src: image.Pt(0, 0), Dst: s, Size: in},
		{Src: image.Pt(in.X, 0), Dst: image.Pt(0, s.Y), Size: image.Pt(out.X, in.Y)},
		{Src: image.Pt(0, in.Y), Dst: image.Pt(s.X, 0), Size: image.Pt(in.X, out.Y)},
		{Src: in, Dst: image.Pt(0, 0), Size: out},
	}
	for _, p := range pieces {
		if p.Size.X > 0 && p.Size.Y > 0 {
			dst = append(dst, p)
		}
	}
	return dst
}

// Rect copies the row-major size.X x size.Y buffer px onto the canvas at
// start, wrapping at most once per axis.
//
// Every piece from SplitTorus is split again along tile boundaries; each
// intersection is copied row by row and marked dirty on its tile.
func Rect(s *tile.Store, d *tile.DirtyRects, start, size image.Point, px []uint32) {
	g := s.Grid()
	var buf [4]SubRect
	for _, sub := range SplitTorus(buf[:0], g.Size(), start, size) {
		copySubRect(s, d, sub, size.X, px)
	}
}

func copySubRect(s *tile.Store, d *tile.DirtyRects, sub SubRect, stride int, px []uint32) {
	g := s.Grid()
	ts := g.TileSize()
	area := image.Rectangle{Min: sub.Dst, Max: sub.Dst.Add(sub.Size)}

	for ty := area.Min.Y / ts.Y; ty <= (area.Max.Y-1)/ts.Y; ty++ {
		for tx := area.Min.X / ts.X; tx <= (area.Max.X-1)/ts.X; tx++ {
			k := tile.Key{X: tx, Y: ty}
			ix := area.Intersect(g.Bounds(k))
			if ix.Empty() {
				continue
			}
			local := ix.Min.Sub(g.Min(k))
			src := sub.Src.Add(ix.Min.Sub(sub.Dst))
			w := ix.Dx()
			dst := s.TileMut(k)

			for row := 0; row < ix.Dy(); row++ {
				so := (src.Y+row)*stride + src.X
				do := (local.Y+row)*ts.X + local.X
				copy(dst[do:do+w], px[so:so+w])
			}
			d.Mark(k, local, ix.Size())
		}
	}
}

func wrap(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
