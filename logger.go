package tilecanvas

import (
	"log/slog"
	"sync/atomic"
)

var (
	discardLogger = slog.New(slog.DiscardHandler)

	// active holds the logger shared by tilecanvas and its sub-packages.
	active atomic.Pointer[slog.Logger]
)

func init() {
	active.Store(discardLogger)
}

// SetLogger routes tilecanvas logging to l. Nothing is logged until it is
// called; nil discards logs again. It may be called at any time from any
// goroutine.
//
// Records by level:
//   - [slog.LevelDebug]: per-frame upload statistics, skipped upload ops
//   - [slog.LevelInfo]: canvas, device and texture set lifecycle
//   - [slog.LevelWarn]: dropped draw requests, failed sink writes
//
// Example:
//
//	tilecanvas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = discardLogger
	}
	active.Store(l)
}

// Logger returns the logger set with SetLogger.
func Logger() *slog.Logger {
	return active.Load()
}
