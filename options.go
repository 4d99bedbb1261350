package tilecanvas

// Option configures a Canvas during creation.
//
// Example:
//
//	cv := tilecanvas.MustNew(cfg,
//	    tilecanvas.WithWorkers(4),
//	    tilecanvas.WithPayloadPool(8),
//	)
type Option func(*options)

type options struct {
	workers    int
	poolBucket int // 0 disables payload recycling
}

func defaultOptions() options {
	return options{workers: 1}
}

// WithWorkers builds upload ops for different tiles on n goroutines.
// n <= 0 uses GOMAXPROCS. The default is 1, which builds on the caller.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithPayloadPool enables reuse of payload buffers handed back through
// Canvas.Recycle, keeping at most maxPerBucket buffers of each size.
func WithPayloadPool(maxPerBucket int) Option {
	return func(o *options) {
		if maxPerBucket > 0 {
			o.poolBucket = maxPerBucket
		}
	}
}
