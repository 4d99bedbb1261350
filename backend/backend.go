package backend

import (
	"errors"

	"github.com/gogpu/tilecanvas"
)

// Common backend errors.
var (
	// ErrSinkNotAvailable is returned when a requested sink is not registered.
	ErrSinkNotAvailable = errors.New("backend: sink not available")

	// ErrHandleConflict is returned when more than one combined sink
	// needs tile handles.
	ErrHandleConflict = errors.New("backend: more than one sink needs tile handles")
)

// Sink is the interface for consumers of upload ops.
// It abstracts the display surface implementation, allowing one canvas to
// feed GPU textures, CPU mirrors or anything else that understands
// tilecanvas.UploadOp.
//
// Sinks are registered via Register() and created via Open().
type Sink interface {
	// Name returns the sink identifier (e.g., "mirror", "wgpu-noop").
	Name() string

	// Handles returns the per-tile handles the sink expects as
	// UploadOp.Target, to be bound with Canvas.BindHandles. Sinks that
	// address tiles by index return nil.
	Handles() []any

	// Apply consumes ops and returns the number of payload bytes written.
	// Ops the sink cannot write yet are skipped, not reported as errors.
	Apply(ops []tilecanvas.UploadOp) (int, error)

	// Close releases all sink resources.
	// The sink should not be used after Close is called.
	Close()
}
