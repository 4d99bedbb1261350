// Package tile provides the tiled CPU backing store for tilecanvas.
//
// The canvas is partitioned into an exact grid of equally sized tiles. Each
// tile owns a row-major buffer of packed RGBA8 pixels and an optional dirty
// rectangle in tile-local coordinates. Tiles are stored in flat slices and
// addressed by linear index:
//
//	index = row * tilesX + column
//
// The same indexing is used by Store, DirtyRects and any host-side handle
// table, so a tile index can be passed between them freely.
//
// Thread safety: Store and DirtyRects are NOT safe for concurrent use, except
// that distinct tile indices may be mutated from distinct goroutines.
package tile

import (
	"fmt"
	"image"
)

// Key identifies a tile by column (X) and row (Y).
type Key = image.Point

// Grid describes an immutable canvas partition.
// The zero value is an empty grid; use NewGrid.
type Grid struct {
	size   image.Point // canvas size in pixels
	tiles  image.Point // tile columns and rows
	tileSz image.Point // tile size in pixels
}

// NewGrid creates a grid for a width x height canvas split into
// tilesX x tilesY tiles.
//
// Panics if any dimension is not positive or if the canvas is not evenly
// divisible by the tile counts. Callers validate configuration first.
func NewGrid(width, height, tilesX, tilesY int) Grid {
	if width <= 0 || height <= 0 || tilesX <= 0 || tilesY <= 0 {
		panic(fmt.Sprintf("tile: invalid grid %dx%d / %dx%d", width, height, tilesX, tilesY))
	}
	if width%tilesX != 0 || height%tilesY != 0 {
		panic(fmt.Sprintf("tile: canvas %dx%d not divisible by %dx%d tiles", width, height, tilesX, tilesY))
	}
	return Grid{
		size:   image.Pt(width, height),
		tiles:  image.Pt(tilesX, tilesY),
		tileSz: image.Pt(width/tilesX, height/tilesY),
	}
}

// Size returns the canvas size in pixels.
func (g Grid) Size() image.Point { return g.size }

// Tiles returns the number of tile columns (X) and rows (Y).
func (g Grid) Tiles() image.Point { return g.tiles }

// TileSize returns the size of one tile in pixels.
func (g Grid) TileSize() image.Point { return g.tileSz }

// Count returns the total number of tiles.
func (g Grid) Count() int { return g.tiles.X * g.tiles.Y }

// PixelsPerTile returns the number of pixels in one tile.
func (g Grid) PixelsPerTile() int { return g.tileSz.X * g.tileSz.Y }

// Index converts a tile key to its linear index.
func (g Grid) Index(k Key) int { return k.Y*g.tiles.X + k.X }

// KeyOf converts a linear index back to a tile key.
func (g Grid) KeyOf(index int) Key {
	return Key{X: index % g.tiles.X, Y: index / g.tiles.X}
}

// Contains reports whether k names a tile of this grid.
func (g Grid) Contains(k Key) bool {
	return k.X >= 0 && k.X < g.tiles.X && k.Y >= 0 && k.Y < g.tiles.Y
}

// Wrap maps any canvas position onto the canvas using Euclidean modulo,
// so positions past an edge continue from the opposite edge.
func (g Grid) Wrap(p image.Point) image.Point {
	return image.Pt(mod(p.X, g.size.X), mod(p.Y, g.size.Y))
}

// Locate returns the tile containing the in-bounds canvas position p and the
// position relative to that tile's top-left pixel.
func (g Grid) Locate(p image.Point) (k Key, local image.Point) {
	k = Key{X: p.X / g.tileSz.X, Y: p.Y / g.tileSz.Y}
	return k, p.Sub(g.Min(k))
}

// Min returns the canvas position of the first pixel of tile k.
func (g Grid) Min(k Key) image.Point {
	return image.Pt(k.X*g.tileSz.X, k.Y*g.tileSz.Y)
}

// Bounds returns the canvas rectangle covered by tile k.
func (g Grid) Bounds(k Key) image.Rectangle {
	o := g.Min(k)
	return image.Rectangle{Min: o, Max: o.Add(g.tileSz)}
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
