package mirror

import (
	"github.com/gogpu/tilecanvas"
	"github.com/gogpu/tilecanvas/backend"
)

func init() {
	backend.Register(SinkName, func(cfg tilecanvas.Config) (backend.Sink, error) {
		return NewSink(New(cfg)), nil
	})
}

// SinkName is the registry name of the mirror sink.
const SinkName = "mirror"

// Sink adapts a Mirror to backend.Sink.
type Sink struct {
	*Mirror
}

// NewSink wraps m.
func NewSink(m *Mirror) *Sink { return &Sink{Mirror: m} }

// Name returns SinkName.
func (s *Sink) Name() string { return SinkName }

// Handles returns nil; the mirror addresses tiles by index.
func (s *Sink) Handles() []any { return nil }

// Apply copies ops into the mirror and returns the payload bytes consumed.
func (s *Sink) Apply(ops []tilecanvas.UploadOp) (int, error) {
	s.Mirror.Apply(ops)
	n := 0
	for _, op := range ops {
		if op.TileIndex >= 0 && op.TileIndex < len(s.tiles) {
			n += len(op.Data)
		}
	}
	return n, nil
}

// Close does nothing.
func (s *Sink) Close() {}
