package tilecanvas

import "errors"

var (
	// ErrInvalidConfig is returned for zero dimensions or a canvas that the
	// tile counts do not divide evenly.
	ErrInvalidConfig = errors.New("tilecanvas: invalid config")

	// ErrEmptyRequest is returned for a rect or span with no pixels.
	ErrEmptyRequest = errors.New("tilecanvas: empty draw request")

	// ErrLengthMismatch is returned when a rect's pixel buffer length is not
	// width*height.
	ErrLengthMismatch = errors.New("tilecanvas: pixel buffer length mismatch")

	// ErrRectTooLarge is returned for a rect wider or taller than the canvas.
	ErrRectTooLarge = errors.New("tilecanvas: rect larger than canvas")

	// ErrHandleCount is returned by BindHandles when the handle count differs
	// from the tile count.
	ErrHandleCount = errors.New("tilecanvas: handle count does not match tile count")

	// ErrClosed is returned when using a closed canvas.
	ErrClosed = errors.New("tilecanvas: canvas is closed")
)
