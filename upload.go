package tilecanvas

import (
	"encoding/binary"
	"image"

	"github.com/gogpu/tilecanvas/internal/tile"
)

const (
	// BytesPerPixel is the size of one packed RGBA8 pixel.
	BytesPerPixel = 4

	// RowAlignment is the byte alignment of UploadOp.BytesPerRow, the
	// copy pitch required by WebGPU for buffer to texture copies.
	RowAlignment = 256

	// rowAlignPixels is RowAlignment in pixels.
	rowAlignPixels = RowAlignment / BytesPerPixel
)

// UploadOp describes one region copy from CPU memory into a tile's display
// surface. Ops are owned by the caller once returned.
type UploadOp struct {
	// Target is the handle bound for the tile with Canvas.BindHandles,
	// or nil if no handles are bound.
	Target any

	// TileIndex is the linear index of the destination tile.
	TileIndex int

	// Key is the destination tile's column (X) and row (Y).
	Key image.Point

	// Origin is the first pixel of the region, relative to the tile.
	Origin image.Point

	// Size is the region size in pixels.
	Size image.Point

	// BytesPerRow is the payload row stride, a multiple of RowAlignment.
	BytesPerRow int

	// Data holds Size.Y rows of BytesPerRow bytes each. Bytes past
	// Size.X*BytesPerPixel in a row are zero.
	Data []byte
}

// Region returns the destination rectangle in tile-local coordinates.
func (op UploadOp) Region() image.Rectangle {
	return image.Rectangle{Min: op.Origin, Max: op.Origin.Add(op.Size)}
}

// Row returns the meaningful bytes of payload row y.
func (op UploadOp) Row(y int) []byte {
	off := y * op.BytesPerRow
	return op.Data[off : off+op.Size.X*BytesPerPixel]
}

// alignedSpan widens [lo, hi) outward to multiples of rowAlignPixels and
// clamps the result to [0, limit).
func alignedSpan(lo, hi, limit int) (int, int) {
	lo = lo &^ (rowAlignPixels - 1)
	hi = min((hi+rowAlignPixels-1)&^(rowAlignPixels-1), limit)
	return lo, hi
}

// alignStride rounds n bytes up to RowAlignment.
func alignStride(n int) int {
	return (n + RowAlignment - 1) &^ (RowAlignment - 1)
}

// buildOp snapshots the padded dirty region r of tile i.
// ok is false when the region is degenerate.
func buildOp(s *tile.Store, i int, r tile.Region, get func(int) []byte) (op UploadOp, ok bool) {
	g := s.Grid()
	ts := g.TileSize()

	area := r.Rect().Intersect(image.Rectangle{Max: ts})
	if area.Empty() {
		return UploadOp{}, false
	}
	x0, x1 := alignedSpan(area.Min.X, area.Max.X, ts.X)
	w, h := x1-x0, area.Dy()
	if w <= 0 || h <= 0 {
		return UploadOp{}, false
	}

	stride := alignStride(w * BytesPerPixel)
	data := get(stride * h)
	px := s.Tile(i)
	for row := 0; row < h; row++ {
		src := px[(area.Min.Y+row)*ts.X+x0:][:w]
		dst := data[row*stride : (row+1)*stride]
		for j, v := range src {
			binary.LittleEndian.PutUint32(dst[j*BytesPerPixel:], v)
		}
		clear(dst[w*BytesPerPixel:])
	}

	return UploadOp{
		TileIndex:   i,
		Key:         g.KeyOf(i),
		Origin:      image.Pt(x0, area.Min.Y),
		Size:        image.Pt(w, h),
		BytesPerRow: stride,
		Data:        data,
	}, true
}
