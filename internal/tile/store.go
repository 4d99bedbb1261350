package tile

import "image"

// Store owns one row-major pixel buffer per tile.
// Pixels are packed RGBA8 values; see tilecanvas.PackRGBA8 for the layout.
type Store struct {
	grid  Grid
	tiles [][]uint32
}

// NewStore allocates a buffer for every tile of g and fills it with clear.
func NewStore(g Grid, clear uint32) *Store {
	n := g.PixelsPerTile()
	backing := make([]uint32, n*g.Count())
	for i := range backing {
		backing[i] = clear
	}
	tiles := make([][]uint32, g.Count())
	for i := range tiles {
		tiles[i] = backing[i*n : (i+1)*n : (i+1)*n]
	}
	return &Store{grid: g, tiles: tiles}
}

// Grid returns the grid the store was created for.
func (s *Store) Grid() Grid { return s.grid }

// Len returns the number of tile buffers.
func (s *Store) Len() int { return len(s.tiles) }

// Tile returns the pixels of the tile at linear index i.
// The slice must not be modified; use TileMut for writes.
func (s *Store) Tile(i int) []uint32 { return s.tiles[i] }

// TileMut returns the mutable pixels of tile k.
func (s *Store) TileMut(k Key) []uint32 { return s.tiles[s.grid.Index(k)] }

// At returns the pixel at the in-bounds canvas position p.
func (s *Store) At(p image.Point) uint32 {
	k, local := s.grid.Locate(p)
	return s.tiles[s.grid.Index(k)][local.Y*s.grid.tileSz.X+local.X]
}

// Fill sets every pixel of every tile to v.
func (s *Store) Fill(v uint32) {
	for _, t := range s.tiles {
		for i := range t {
			t[i] = v
		}
	}
}
