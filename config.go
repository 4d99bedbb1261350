package tilecanvas

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/tilecanvas/internal/tile"
)

// Origin selects where canvas row 0 is presented.
type Origin uint8

const (
	// OriginBottomLeft presents row 0 at the bottom, Y growing upwards.
	OriginBottomLeft Origin = iota
	// OriginTopLeft presents row 0 at the top, Y growing downwards.
	OriginTopLeft
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginBottomLeft:
		return "bottom-left"
	case OriginTopLeft:
		return "top-left"
	default:
		return fmt.Sprintf("Origin(%d)", uint8(o))
	}
}

// Config is the immutable description of a canvas and its tile layout.
type Config struct {
	clear  color.NRGBA
	z      float32
	grid   tile.Grid
	origin Origin
}

// NewConfig validates and creates a canvas configuration.
//
// The canvas is width x height pixels split into tilesX x tilesY tiles.
// Every dimension must be positive and the tile counts must divide the
// canvas exactly. clear is the initial color of every pixel; z is a
// depth hint passed to renderers through TilePlacement.
func NewConfig(clear color.Color, z float32, width, height, tilesX, tilesY int) (Config, error) {
	if width <= 0 || height <= 0 {
		return Config{}, fmt.Errorf("%w: canvas %dx%d", ErrInvalidConfig, width, height)
	}
	if tilesX <= 0 || tilesY <= 0 {
		return Config{}, fmt.Errorf("%w: tiles %dx%d", ErrInvalidConfig, tilesX, tilesY)
	}
	if width%tilesX != 0 || height%tilesY != 0 {
		return Config{}, fmt.Errorf("%w: canvas %dx%d not divisible by %dx%d tiles",
			ErrInvalidConfig, width, height, tilesX, tilesY)
	}
	return Config{
		clear: color.NRGBAModel.Convert(clear).(color.NRGBA),
		z:     z,
		grid:  tile.NewGrid(width, height, tilesX, tilesY),
	}, nil
}

// MustConfig is like NewConfig but panics on error.
func MustConfig(clear color.Color, z float32, width, height, tilesX, tilesY int) Config {
	cfg, err := NewConfig(clear, z, width, height, tilesX, tilesY)
	if err != nil {
		panic(err)
	}
	return cfg
}

// DefaultConfig returns an 800x600 white canvas split into 8x6 tiles.
func DefaultConfig() Config {
	return MustConfig(color.White, 0, 800, 600, 8, 6)
}

// WithOrigin returns a copy of c using origin o.
func (c Config) WithOrigin(o Origin) Config {
	c.origin = o
	return c
}

// ClearColor returns the initial pixel color.
func (c Config) ClearColor() color.NRGBA { return c.clear }

// ClearPixel returns the initial pixel color packed with PackRGBA8.
func (c Config) ClearPixel() uint32 {
	return PackRGBA8(c.clear.R, c.clear.G, c.clear.B, c.clear.A)
}

// ZIndex returns the depth hint.
func (c Config) ZIndex() float32 { return c.z }

// Origin returns the presentation origin.
func (c Config) Origin() Origin { return c.origin }

// CanvasSize returns the canvas size in pixels.
func (c Config) CanvasSize() image.Point { return c.grid.Size() }

// TileSize returns the size of one tile in pixels.
func (c Config) TileSize() image.Point { return c.grid.TileSize() }

// TilesX returns the number of tile columns.
func (c Config) TilesX() int { return c.grid.Tiles().X }

// TilesY returns the number of tile rows.
func (c Config) TilesY() int { return c.grid.Tiles().Y }

// TileCount returns the total number of tiles.
func (c Config) TileCount() int { return c.grid.Count() }

// PixelsPerTile returns the number of pixels in one tile.
func (c Config) PixelsPerTile() int { return c.grid.PixelsPerTile() }

// TileIndex returns the linear index of the tile at column k.X, row k.Y.
// Handle tables passed to Canvas.BindHandles use the same indexing.
func (c Config) TileIndex(k image.Point) int { return c.grid.Index(k) }

// TileKey is the inverse of TileIndex.
func (c Config) TileKey(index int) image.Point { return c.grid.KeyOf(index) }

// Placement positions one tile's display surface in world space.
type Placement struct {
	// X, Y is the centre of the tile relative to the centre of the canvas.
	X, Y float32
	// Z is the canvas depth hint.
	Z float32
	// FlipY is set when the tile's rows must be drawn bottom to top.
	FlipY bool
}

// TilePlacement returns where the tile at key k is drawn.
//
// Tiles are laid out around the canvas centre. For OriginBottomLeft the Y
// axis points up and each tile is flipped so that its row 0 is its bottom
// row; for OriginTopLeft the Y axis points down and no flip is needed.
func (c Config) TilePlacement(k image.Point) Placement {
	n, ts := c.grid.Tiles(), c.grid.TileSize()
	return Placement{
		X:     (float32(k.X) - float32(n.X-1)/2) * float32(ts.X),
		Y:     (float32(k.Y) - float32(n.Y-1)/2) * float32(ts.Y),
		Z:     c.z,
		FlipY: c.origin == OriginBottomLeft,
	}
}
