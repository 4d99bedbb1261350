// Package mirror keeps CPU copies of tile display surfaces, updated from
// tilecanvas upload ops exactly as a GPU renderer would update its textures.
//
// A Mirror is a reference consumer: comparing Mirror.Image with
// Canvas.Image verifies that the upload ops carry every change. It also
// backs PNG output and the terminal preview.
package mirror

import (
	"image"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/tilecanvas"
)

// Mirror holds one NRGBA image per tile.
//
// Thread safety: Mirror is safe for concurrent use.
type Mirror struct {
	mu    sync.RWMutex
	cfg   tilecanvas.Config
	tiles []*image.NRGBA
}

// New creates a mirror whose tiles are filled with cfg's clear color.
func New(cfg tilecanvas.Config) *Mirror {
	ts := cfg.TileSize()
	c := cfg.ClearColor()
	blank := image.NewNRGBA(image.Rectangle{Max: ts})
	for i := 0; i < len(blank.Pix); i += 4 {
		blank.Pix[i], blank.Pix[i+1], blank.Pix[i+2], blank.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	tiles := make([]*image.NRGBA, cfg.TileCount())
	for i := range tiles {
		tiles[i] = image.NewNRGBA(blank.Rect)
		copy(tiles[i].Pix, blank.Pix)
	}
	return &Mirror{cfg: cfg, tiles: tiles}
}

// Apply copies each op's payload into its tile and returns the number of ops
// applied. Ops naming a tile outside the grid are ignored.
func (m *Mirror) Apply(ops []tilecanvas.UploadOp) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for i := range ops {
		op := &ops[i]
		if op.TileIndex < 0 || op.TileIndex >= len(m.tiles) {
			continue
		}
		src := &image.NRGBA{
			Pix:    op.Data,
			Stride: op.BytesPerRow,
			Rect:   image.Rectangle{Max: op.Size},
		}
		tilecanvas.CopyNRGBA(m.tiles[op.TileIndex], op.Origin, src, src.Rect)
		n++
	}
	return n
}

// Tile returns a copy of tile i.
func (m *Mirror) Tile(i int) *image.NRGBA {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t := m.tiles[i]
	out := image.NewNRGBA(t.Bounds())
	copy(out.Pix, t.Pix)
	return out
}

// Image composes all tiles as presented by the config's Origin.
func (m *Mirror) Image() *image.NRGBA {
	m.mu.RLock()
	defer m.mu.RUnlock()

	img := image.NewNRGBA(image.Rectangle{Max: m.cfg.CanvasSize()})
	ts := m.cfg.TileSize()
	for i, t := range m.tiles {
		k := m.cfg.TileKey(i)
		at := image.Pt(k.X*ts.X, k.Y*ts.Y)
		tilecanvas.CopyNRGBA(img, at, t, t.Bounds())
	}
	if m.cfg.Origin() == tilecanvas.OriginBottomLeft {
		tilecanvas.FlipRows(img)
	}
	return img
}

// Scaled returns Image resized to size with nearest-neighbour sampling.
func (m *Mirror) Scaled(size image.Point) *image.NRGBA {
	src := m.Image()
	if size == src.Bounds().Size() {
		return src
	}
	dst := image.NewNRGBA(image.Rectangle{Max: size})
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
