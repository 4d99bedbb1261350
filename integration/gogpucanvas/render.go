// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gogpucanvas

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/tilecanvas"
)

// RenderOptions positions the canvas in the window.
type RenderOptions struct {
	// X, Y is the window position of the canvas top-left corner.
	X, Y float32
}

// RenderTo applies queued requests, brings every tile texture up to date
// and draws the tiles at the window origin.
//
// Example:
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    gc.RenderTo(dc)
//	})
func (c *Canvas) RenderTo(dc gpucontext.TextureDrawer) error {
	return c.RenderWithOptions(dc, RenderOptions{})
}

// RenderWithOptions is like RenderTo with an explicit window position.
func (c *Canvas) RenderWithOptions(dc gpucontext.TextureDrawer, opts RenderOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCanvasClosed
	}
	creator := dc.TextureCreator()
	if creator == nil {
		return ErrInvalidRenderer
	}

	c.stats = Stats{}
	ops := c.cv.Frame()
	err := c.update(ops)
	c.cv.Recycle(ops)
	if err != nil {
		return err
	}

	for _, s := range c.slots {
		if s.texture != nil {
			continue
		}
		tex, err := creator.NewTextureFromRGBA(c.tileRGBA(s.index))
		if err != nil {
			return fmt.Errorf("gogpucanvas: create texture for tile %d: %w", s.index, err)
		}
		s.texture = tex
		c.stats.Created++
	}

	for _, s := range c.slots {
		at := c.screenMin(s.key)
		if err := dc.DrawTexture(s.texture, opts.X+float32(at.X), opts.Y+float32(at.Y)); err != nil {
			return fmt.Errorf("gogpucanvas: draw tile %d: %w", s.index, err)
		}
		c.stats.Drawn++
	}
	return nil
}

// update writes ops to existing textures. Ops are consumed even when some
// writes fail; the errors are joined.
func (c *Canvas) update(ops []tilecanvas.UploadOp) error {
	var errs []error
	for i := range ops {
		op := &ops[i]
		s, ok := op.Target.(*tileSlot)
		if !ok || s.texture == nil {
			c.stats.Skipped++
			continue
		}
		if err := c.write(s, op); err != nil {
			errs = append(errs, fmt.Errorf("gogpucanvas: update tile %d: %w", s.index, err))
			continue
		}
		c.stats.Updated++
	}
	return errors.Join(errs...)
}

func (c *Canvas) write(s *tileSlot, op *tilecanvas.UploadOp) error {
	if u, ok := s.texture.(gpucontext.TextureRegionUpdater); ok {
		x, y := op.Origin.X, op.Origin.Y
		if c.flipped() {
			y = c.cfg.TileSize().Y - op.Origin.Y - op.Size.Y
		}
		return u.UpdateRegion(x, y, op.Size.X, op.Size.Y, c.denseRows(op))
	}
	if u, ok := s.texture.(gpucontext.TextureUpdater); ok {
		_, _, data := c.tileRGBA(s.index)
		return u.UpdateData(data)
	}
	return fmt.Errorf("texture %T cannot be updated", s.texture)
}

// denseRows strips row padding from op's payload, reversing the rows for
// bottom-left canvases.
func (c *Canvas) denseRows(op *tilecanvas.UploadOp) []byte {
	n := op.Size.X * tilecanvas.BytesPerPixel
	out := make([]byte, 0, n*op.Size.Y)
	for y := 0; y < op.Size.Y; y++ {
		row := y
		if c.flipped() {
			row = op.Size.Y - 1 - y
		}
		out = append(out, op.Row(row)...)
	}
	return out
}

// tileRGBA returns the current contents of tile i in presentation order.
func (c *Canvas) tileRGBA(i int) (width, height int, data []byte) {
	img := c.cv.TileImage(i)
	if c.flipped() {
		tilecanvas.FlipRows(img)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), img.Pix
}

// screenMin returns the window offset of tile k's top-left pixel.
func (c *Canvas) screenMin(k image.Point) image.Point {
	ts := c.cfg.TileSize()
	row := k.Y
	if c.flipped() {
		row = c.cfg.TilesY() - 1 - k.Y
	}
	return image.Pt(k.X*ts.X, row*ts.Y)
}

func (c *Canvas) flipped() bool {
	return c.cfg.Origin() == tilecanvas.OriginBottomLeft
}
