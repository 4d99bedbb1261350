// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gogpucanvas

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/tilecanvas"
)

// Errors returned by Canvas operations.
var (
	// ErrNilCanvas is returned when New is called without a tile canvas.
	ErrNilCanvas = errors.New("gogpucanvas: tile canvas is nil")

	// ErrInvalidRenderer is returned when the drawer has no texture creator.
	ErrInvalidRenderer = errors.New("gogpucanvas: drawer has no texture creator")

	// ErrCanvasClosed is returned when operating on a closed canvas.
	ErrCanvasClosed = errors.New("gogpucanvas: canvas is closed")
)

// textureDestroyer is implemented by textures that hold GPU resources.
type textureDestroyer interface {
	Destroy()
}

// tileSlot is the handle bound to one canvas tile.
type tileSlot struct {
	index   int
	key     image.Point
	texture gpucontext.Texture // nil until created
}

// Stats counts the work done by the most recent RenderTo.
type Stats struct {
	Created int // textures created from tile contents
	Updated int // upload ops written to existing textures
	Skipped int // upload ops for tiles without a texture
	Drawn   int // DrawTexture calls
}

// Canvas renders a tilecanvas.Canvas as a grid of window textures.
//
// Thread safety: Canvas is safe for concurrent use; RenderTo calls
// serialize.
type Canvas struct {
	mu sync.Mutex

	cv    *tilecanvas.Canvas
	cfg   tilecanvas.Config
	slots []*tileSlot
	stats Stats

	closed bool
}

// New binds a texture slot to every tile of cv.
// The tile canvas must not have other handles bound while in use here.
func New(cv *tilecanvas.Canvas) (*Canvas, error) {
	if cv == nil {
		return nil, ErrNilCanvas
	}
	cfg := cv.Config()
	c := &Canvas{
		cv:    cv,
		cfg:   cfg,
		slots: make([]*tileSlot, cfg.TileCount()),
	}
	handles := make([]any, len(c.slots))
	for i := range c.slots {
		c.slots[i] = &tileSlot{index: i, key: cfg.TileKey(i)}
		handles[i] = c.slots[i]
	}
	if err := cv.BindHandles(handles); err != nil {
		return nil, fmt.Errorf("gogpucanvas: bind handles: %w", err)
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(cv *tilecanvas.Canvas) *Canvas {
	c, err := New(cv)
	if err != nil {
		panic(err)
	}
	return c
}

// TileCanvas returns the wrapped tile canvas.
func (c *Canvas) TileCanvas() *tilecanvas.Canvas {
	return c.cv
}

// Size returns the drawn size in pixels.
func (c *Canvas) Size() (width, height int) {
	s := c.cfg.CanvasSize()
	return s.X, s.Y
}

// Ready reports how many tiles have a texture.
func (c *Canvas) Ready() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.slots {
		if s.texture != nil {
			n++
		}
	}
	return n
}

// Stats returns the counters of the most recent RenderTo.
func (c *Canvas) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Close unbinds the tile canvas handles and destroys all textures.
// After Close, the Canvas should not be used.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	for _, s := range c.slots {
		if d, ok := s.texture.(textureDestroyer); ok {
			d.Destroy()
		}
		s.texture = nil
	}
	return c.cv.BindHandles(nil)
}
