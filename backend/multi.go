package backend

import (
	"errors"
	"strings"

	"github.com/gogpu/tilecanvas"
)

// MultiSink applies every op batch to several sinks in order.
type MultiSink struct {
	sinks   []Sink
	handles []any
}

// Multi combines sinks. At most one of them may need tile handles.
func Multi(sinks ...Sink) (*MultiSink, error) {
	m := &MultiSink{sinks: sinks}
	for _, s := range sinks {
		h := s.Handles()
		if h == nil {
			continue
		}
		if m.handles != nil {
			return nil, ErrHandleConflict
		}
		m.handles = h
	}
	return m, nil
}

// Name joins the names of the combined sinks with "+".
func (m *MultiSink) Name() string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

// Handles returns the handles of the sink that needs them, or nil.
func (m *MultiSink) Handles() []any { return m.handles }

// Len returns the number of combined sinks.
func (m *MultiSink) Len() int { return len(m.sinks) }

// Apply passes ops to every sink. All sinks see the ops even if some
// fail; the byte count is the sum over all sinks.
func (m *MultiSink) Apply(ops []tilecanvas.UploadOp) (int, error) {
	total := 0
	var errs []error
	for _, s := range m.sinks {
		n, err := s.Apply(ops)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// Close closes every sink.
func (m *MultiSink) Close() {
	for _, s := range m.sinks {
		s.Close()
	}
}
