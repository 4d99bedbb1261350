package tile

import "image"

// Region is a dirty rectangle in tile-local pixel coordinates.
// Both Min and Max are inclusive.
type Region struct {
	Min, Max image.Point
}

// Rect returns r as a half-open image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rectangle{Min: r.Min, Max: r.Max.Add(image.Pt(1, 1))}
}

// Union returns the bounding box of r and o.
func (r Region) Union(o Region) Region {
	return Region{
		Min: image.Pt(min(r.Min.X, o.Min.X), min(r.Min.Y, o.Min.Y)),
		Max: image.Pt(max(r.Max.X, o.Max.X), max(r.Max.Y, o.Max.Y)),
	}
}

type slot struct {
	region  Region
	present bool
}

// DirtyRects tracks at most one pending Region per tile.
//
// Marks on the same tile are merged into their bounding box, so a pending
// region may cover more pixels than were written but never fewer. Take hands
// the region to exactly one consumer and leaves the tile clean.
type DirtyRects struct {
	grid  Grid
	slots []slot
	count int
}

// NewDirtyRects creates a tracker with every tile of g clean.
func NewDirtyRects(g Grid) *DirtyRects {
	return &DirtyRects{grid: g, slots: make([]slot, g.Count())}
}

// Len returns the number of tiles tracked.
func (d *DirtyRects) Len() int { return len(d.slots) }

// Count returns the number of tiles with a pending region.
func (d *DirtyRects) Count() int { return d.count }

// Mark unions the size-sized rectangle at local into tile k's pending region.
//
// local is clamped into the tile and the far corner is clamped to the tile's
// last pixel. A size with a non-positive dimension is a no-op.
func (d *DirtyRects) Mark(k Key, local, size image.Point) {
	if size.X <= 0 || size.Y <= 0 {
		return
	}
	last := d.grid.tileSz.Sub(image.Pt(1, 1))
	lo := image.Pt(clamp(local.X, 0, last.X), clamp(local.Y, 0, last.Y))
	hi := image.Pt(min(lo.X+size.X-1, last.X), min(lo.Y+size.Y-1, last.Y))
	r := Region{Min: lo, Max: hi}

	s := &d.slots[d.grid.Index(k)]
	if s.present {
		s.region = s.region.Union(r)
		return
	}
	s.region = r
	s.present = true
	d.count++
}

// MarkAll marks every tile fully dirty.
func (d *DirtyRects) MarkAll() {
	for i := range d.slots {
		d.Mark(d.grid.KeyOf(i), image.Point{}, d.grid.tileSz)
	}
}

// Take returns and clears the pending region of tile i.
// ok is false when the tile has nothing pending.
func (d *DirtyRects) Take(i int) (r Region, ok bool) {
	s := &d.slots[i]
	if !s.present {
		return Region{}, false
	}
	r = s.region
	*s = slot{}
	d.count--
	return r, true
}

// Peek returns the pending region of tile i without clearing it.
func (d *DirtyRects) Peek(i int) (Region, bool) {
	s := d.slots[i]
	return s.region, s.present
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
