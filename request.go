package tilecanvas

import (
	"fmt"
	"image"
)

// Request is a draw request accepted by Canvas.Enqueue.
// It is implemented by DrawPixel, DrawRect and DrawSpan.
type Request interface {
	// Validate reports why the request would be dropped, or nil.
	Validate(canvas image.Point) error

	request()
}

// DrawPixel writes one pixel. Pos wraps into the canvas.
type DrawPixel struct {
	Pos   image.Point
	Color uint32
}

// DrawRect writes a Size.X x Size.Y block of row-major pixels at Start.
// The block wraps around the canvas edges at most once per axis.
type DrawRect struct {
	Start  image.Point
	Size   image.Point
	Pixels []uint32
}

// DrawSpan writes Pixels in canvas scan order starting at Start, continuing
// on the next row at the right edge and at row 0 past the last row.
type DrawSpan struct {
	Start  image.Point
	Pixels []uint32
}

func (DrawPixel) request() {}
func (DrawRect) request()  {}
func (DrawSpan) request()  {}

// Validate always succeeds: any position wraps onto the canvas.
func (DrawPixel) Validate(image.Point) error { return nil }

// Validate checks the size against the pixel buffer and the canvas.
func (r DrawRect) Validate(canvas image.Point) error {
	if r.Size.X <= 0 || r.Size.Y <= 0 {
		return fmt.Errorf("%w: rect size %v", ErrEmptyRequest, r.Size)
	}
	if want := r.Size.X * r.Size.Y; len(r.Pixels) != want {
		return fmt.Errorf("%w: expected %d, got %d", ErrLengthMismatch, want, len(r.Pixels))
	}
	if r.Size.X > canvas.X || r.Size.Y > canvas.Y {
		return fmt.Errorf("%w: rect %v, canvas %v", ErrRectTooLarge, r.Size, canvas)
	}
	return nil
}

// Validate rejects empty spans.
func (s DrawSpan) Validate(image.Point) error {
	if len(s.Pixels) == 0 {
		return fmt.Errorf("%w: span", ErrEmptyRequest)
	}
	return nil
}

// Batch groups requests for one frame.
// The zero value is an empty batch ready to use.
type Batch struct {
	Pixels []DrawPixel
	Rects  []DrawRect
	Spans  []DrawSpan
}

// Add appends r to the queue for its category. Nil requests and request
// types the canvas does not draw are logged and dropped.
func (b *Batch) Add(r Request) {
	switch r := r.(type) {
	case DrawPixel:
		b.Pixels = append(b.Pixels, r)
		return
	case DrawRect:
		b.Rects = append(b.Rects, r)
		return
	case DrawSpan:
		b.Spans = append(b.Spans, r)
		return
	case *DrawPixel:
		if r != nil {
			b.Pixels = append(b.Pixels, *r)
			return
		}
	case *DrawRect:
		if r != nil {
			b.Rects = append(b.Rects, *r)
			return
		}
	case *DrawSpan:
		if r != nil {
			b.Spans = append(b.Spans, *r)
			return
		}
	}
	Logger().Warn("tilecanvas: request dropped", "type", fmt.Sprintf("%T", r))
}

// Len returns the number of requests in the batch.
func (b *Batch) Len() int {
	return len(b.Pixels) + len(b.Rects) + len(b.Spans)
}

// Reset empties the batch, keeping its capacity.
func (b *Batch) Reset() {
	b.Pixels = b.Pixels[:0]
	b.Rects = b.Rects[:0]
	b.Spans = b.Spans[:0]
}
