package tilecanvas

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/tilecanvas/internal/blit"
	"github.com/gogpu/tilecanvas/internal/parallel"
	"github.com/gogpu/tilecanvas/internal/tile"
)

// FrameStats summarizes the most recent Apply and BuildUploads calls.
type FrameStats struct {
	Pixels   int // pixel requests applied
	Rects    int // rect requests applied
	Spans    int // span requests applied
	Rejected int // requests dropped by validation
	Ops      int // upload ops built
	Bytes    int // total payload bytes
}

// Canvas owns the tile store, the dirty-rect tracker and the tile handle
// table, and turns queued draw requests into upload ops.
//
// Thread safety: all methods are safe for concurrent use. Requests may be
// enqueued from any goroutine; Frame, Apply and BuildUploads serialize with
// each other and with Enqueue.
type Canvas struct {
	mu sync.Mutex

	cfg     Config
	store   *tile.Store
	dirty   *tile.DirtyRects
	handles []any

	queue Batch
	stats FrameStats

	workers  *parallel.WorkerPool // nil builds on the caller
	payloads *tile.BufferPool     // nil disables Recycle
	closed   bool

	regions []tile.Region // scratch for BuildUploads
	taken   []int
}

// New creates a canvas for cfg with every pixel set to the clear color.
// It fails with ErrInvalidConfig for a zero Config.
func New(cfg Config, opts ...Option) (*Canvas, error) {
	if cfg.grid.Count() == 0 {
		return nil, fmt.Errorf("%w: zero config", ErrInvalidConfig)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Canvas{
		cfg:   cfg,
		store: tile.NewStore(cfg.grid, cfg.ClearPixel()),
		dirty: tile.NewDirtyRects(cfg.grid),
	}
	if o.workers != 1 {
		c.workers = parallel.NewWorkerPool(o.workers)
	}
	if o.poolBucket > 0 {
		c.payloads = tile.NewBufferPool(o.poolBucket)
	}

	Logger().Info("tilecanvas: canvas created",
		"size", cfg.CanvasSize(), "tiles", cfg.grid.Tiles(), "tileSize", cfg.TileSize())
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config, opts ...Option) *Canvas {
	c, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Config returns the canvas configuration.
func (c *Canvas) Config() Config { return c.cfg }

// BindHandles sets the per-tile display surface handles carried by upload
// ops as UploadOp.Target. handles[i] belongs to the tile with linear index
// i. Passing nil unbinds all handles.
func (c *Canvas) BindHandles(handles []any) error {
	if handles != nil && len(handles) != c.cfg.TileCount() {
		return fmt.Errorf("%w: got %d, want %d", ErrHandleCount, len(handles), c.cfg.TileCount())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles = nil
	if handles != nil {
		c.handles = append(make([]any, 0, len(handles)), handles...)
	}
	return nil
}

// Enqueue queues requests for the next Apply. Requests of the same kind
// are applied in the order they were queued. Requests on a closed canvas
// are dropped.
func (c *Canvas) Enqueue(reqs ...Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		Logger().Warn("tilecanvas: request on closed canvas dropped", "count", len(reqs))
		return
	}
	for _, r := range reqs {
		c.queue.Add(r)
	}
}

// Submit queues every request in b. b may be reset and reused afterwards.
// A nil batch is logged and dropped.
func (c *Canvas) Submit(b *Batch) {
	if b == nil {
		Logger().Warn("tilecanvas: nil batch dropped")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		Logger().Warn("tilecanvas: batch on closed canvas dropped", "count", b.Len())
		return
	}
	c.queue.Pixels = append(c.queue.Pixels, b.Pixels...)
	c.queue.Rects = append(c.queue.Rects, b.Rects...)
	c.queue.Spans = append(c.queue.Spans, b.Spans...)
}

// Apply drains the queue into the tile store: all pixels, then all rects,
// then all spans. Invalid requests are logged and dropped.
func (c *Canvas) Apply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply()
}

func (c *Canvas) apply() {
	canvas := c.cfg.CanvasSize()
	st := FrameStats{}

	for _, p := range c.queue.Pixels {
		blit.Pixel(c.store, c.dirty, p.Pos, p.Color)
		st.Pixels++
	}
	for _, r := range c.queue.Rects {
		if err := r.Validate(canvas); err != nil {
			Logger().Warn("tilecanvas: rect dropped", "start", r.Start, "err", err)
			st.Rejected++
			continue
		}
		blit.Rect(c.store, c.dirty, r.Start, r.Size, r.Pixels)
		st.Rects++
	}
	for _, s := range c.queue.Spans {
		if err := s.Validate(canvas); err != nil {
			Logger().Warn("tilecanvas: span dropped", "start", s.Start, "err", err)
			st.Rejected++
			continue
		}
		blit.Span(c.store, c.dirty, s.Start, s.Pixels)
		st.Spans++
	}

	clear(c.queue.Rects)
	clear(c.queue.Spans)
	c.queue.Reset()
	c.stats = st
}

// BuildUploads drains every dirty tile into an upload op and leaves all
// tiles clean. Tiles whose padded region is empty produce no op. The
// returned ops are in tile index order.
func (c *Canvas) BuildUploads() []UploadOp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildUploads()
}

func (c *Canvas) buildUploads() []UploadOp {
	c.regions, c.taken = c.regions[:0], c.taken[:0]
	for i := 0; i < c.dirty.Len(); i++ {
		if r, ok := c.dirty.Take(i); ok {
			c.regions = append(c.regions, r)
			c.taken = append(c.taken, i)
		}
	}
	if len(c.taken) == 0 {
		c.stats.Ops, c.stats.Bytes = 0, 0
		return nil
	}

	get := func(n int) []byte { return make([]byte, n) }
	if c.payloads != nil {
		get = c.payloads.Get
	}

	built := make([]UploadOp, len(c.taken))
	valid := make([]bool, len(c.taken))
	build := func(j int) {
		built[j], valid[j] = buildOp(c.store, c.taken[j], c.regions[j], get)
	}
	if c.workers != nil {
		c.workers.ForEach(len(c.taken), build)
	} else {
		for j := range c.taken {
			build(j)
		}
	}

	ops := built[:0]
	bytes := 0
	for j, op := range built {
		if !valid[j] {
			continue
		}
		if c.handles != nil {
			op.Target = c.handles[op.TileIndex]
		}
		bytes += len(op.Data)
		ops = append(ops, op)
	}
	c.stats.Ops, c.stats.Bytes = len(ops), bytes

	Logger().Debug("tilecanvas: uploads built", "ops", len(ops), "bytes", bytes)
	return ops
}

// Frame applies all queued requests and returns the resulting upload ops.
func (c *Canvas) Frame() []UploadOp {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply()
	return c.buildUploads()
}

// Invalidate marks every tile fully dirty so the next BuildUploads
// re-sends the whole canvas.
func (c *Canvas) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty.MarkAll()
}

// Pending returns the number of tiles with a dirty region.
func (c *Canvas) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty.Count()
}

// Stats returns statistics for the last Apply and BuildUploads.
func (c *Canvas) Stats() FrameStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Recycle returns op payloads to the payload pool configured with
// WithPayloadPool. The ops must not be used afterwards. Without a pool
// Recycle does nothing.
func (c *Canvas) Recycle(ops []UploadOp) {
	if c.payloads == nil {
		return
	}
	for i := range ops {
		c.payloads.Put(ops[i].Data)
		ops[i].Data = nil
	}
}

// Close stops the worker pool and drops any queued requests.
// Calling Close twice returns ErrClosed.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.queue.Reset()
	if c.workers != nil {
		c.workers.Close()
	}
	Logger().Info("tilecanvas: canvas closed")
	return nil
}

// At returns the pixel at p, wrapped into the canvas.
func (c *Canvas) At(p image.Point) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.At(c.cfg.grid.Wrap(p))
}
