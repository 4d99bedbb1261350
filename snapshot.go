package tilecanvas

import (
	"image"
)

// Tile returns a copy of the pixels of the tile with linear index i.
func (c *Canvas) Tile(i int) []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint32(nil), c.store.Tile(i)...)
}

// TileImage returns a copy of tile i as an image whose row 0 is the tile's
// row 0.
func (c *Canvas) TileImage(i int) *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tileImage(i)
}

func (c *Canvas) tileImage(i int) *image.NRGBA {
	ts := c.cfg.TileSize()
	img := image.NewNRGBA(image.Rectangle{Max: ts})
	for j, v := range c.store.Tile(i) {
		img.SetNRGBA(j%ts.X, j/ts.X, NRGBA(v))
	}
	return img
}

// Image returns the whole canvas as presented: for OriginBottomLeft canvas
// row 0 is the last image row, for OriginTopLeft it is the first.
func (c *Canvas) Image() *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.cfg.CanvasSize()
	img := image.NewNRGBA(image.Rectangle{Max: size})
	for i := 0; i < c.cfg.TileCount(); i++ {
		ti := c.tileImage(i)
		at := c.cfg.grid.Min(c.cfg.TileKey(i))
		CopyNRGBA(img, at, ti, ti.Bounds())
	}
	if c.cfg.Origin() == OriginBottomLeft {
		FlipRows(img)
	}
	return img
}

// FlipRows reverses the row order of img in place.
func FlipRows(img *image.NRGBA) {
	b := img.Bounds()
	tmp := make([]byte, b.Dx()*4)
	for top, bot := 0, b.Dy()-1; top < bot; top, bot = top+1, bot-1 {
		r0 := img.Pix[top*img.Stride:][:len(tmp)]
		r1 := img.Pix[bot*img.Stride:][:len(tmp)]
		copy(tmp, r0)
		copy(r0, r1)
		copy(r1, tmp)
	}
}

// CopyNRGBA copies the sr part of src into dst with its top-left corner at
// dp. Pixels are copied byte for byte, so non-opaque colors survive
// unchanged. The copy is clipped to both images.
func CopyNRGBA(dst *image.NRGBA, dp image.Point, src *image.NRGBA, sr image.Rectangle) {
	sr = sr.Intersect(src.Bounds())
	dr := image.Rectangle{Min: dp, Max: dp.Add(sr.Size())}.Intersect(dst.Bounds())
	sr.Min = sr.Min.Add(dr.Min.Sub(dp))
	n := dr.Dx() * 4
	if n <= 0 {
		return
	}
	for y := 0; y < dr.Dy(); y++ {
		d := dst.PixOffset(dr.Min.X, dr.Min.Y+y)
		s := src.PixOffset(sr.Min.X, sr.Min.Y+y)
		copy(dst.Pix[d:d+n], src.Pix[s:s+n])
	}
}
