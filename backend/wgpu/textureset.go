package wgpu

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tilecanvas"
)

// Errors returned by TextureSet.
var (
	// ErrNilDevice is returned by Realize without a device or queue.
	ErrNilDevice = errors.New("wgpu: nil device or queue")

	// ErrDestroyed is returned when using a destroyed TextureSet.
	ErrDestroyed = errors.New("wgpu: texture set destroyed")

	// ErrNotRealized is returned by Draw before Realize.
	ErrNotRealized = errors.New("wgpu: texture set not realized")

	// ErrInvalidViewport is returned by SetViewport for an empty viewport.
	ErrInvalidViewport = errors.New("wgpu: invalid viewport")
)

// TextureFormat is the format of every tile texture. Its byte order matches
// tilecanvas.PackRGBA8.
const TextureFormat = gputypes.TextureFormatRGBA8UnormSrgb

// Handle is the display-surface handle of one tile.
//
// Handles exist from NewTextureSet on, so they can be bound to a canvas
// before the GPU is available. A handle becomes ready once Realize has
// created its texture. Ready and Texture may be called from any goroutine.
type Handle struct {
	Index int
	Key   image.Point

	gpu atomic.Pointer[tileGPU]
}

// tileGPU holds the GPU objects of one tile. It is published whole, after
// every object exists.
type tileGPU struct {
	texture  hal.Texture
	view     hal.TextureView
	uniforms hal.Buffer
	bind     hal.BindGroup
}

// Ready reports whether the tile texture exists.
func (h *Handle) Ready() bool { return h.gpu.Load() != nil }

// Texture returns the tile texture, or nil if the handle is not ready.
func (h *Handle) Texture() hal.Texture {
	if g := h.gpu.Load(); g != nil {
		return g.texture
	}
	return nil
}

// ApplyStats counts what happened to the ops passed to Apply.
type ApplyStats struct {
	Written  int // ops written to a texture
	NotReady int // ops skipped because the texture does not exist yet
	Foreign  int // ops whose Target is not a handle of this set
	Bytes    int // payload bytes written
}

// TextureSet owns one GPU texture per canvas tile and applies upload ops to
// them with Queue.WriteTexture. Draw records the tiles as textured quads
// into a render pass.
//
// Usage:
//
//	set := wgpu.NewTextureSet(cv.Config())
//	_ = cv.BindHandles(set.Handles())
//	// once a device exists:
//	_ = set.Realize(device, queue)
//	// every frame:
//	_, _ = set.Apply(cv.Frame())
//	_, _ = set.Draw(pass)
//
// Thread safety: TextureSet is safe for concurrent use.
type TextureSet struct {
	mu sync.Mutex

	cfg     tilecanvas.Config
	handles []*Handle

	device  hal.Device
	queue   hal.Queue
	sampler hal.Sampler
	shader  hal.ShaderModule

	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	viewport   image.Point

	destroyed bool
}

// NewTextureSet creates unrealized handles for every tile of cfg.
func NewTextureSet(cfg tilecanvas.Config) *TextureSet {
	handles := make([]*Handle, cfg.TileCount())
	for i := range handles {
		handles[i] = &Handle{Index: i, Key: cfg.TileKey(i)}
	}
	return &TextureSet{cfg: cfg, handles: handles, viewport: cfg.CanvasSize()}
}

// Handles returns the tile handles indexed by tile index, typed for
// Canvas.BindHandles.
func (s *TextureSet) Handles() []any {
	out := make([]any, len(s.handles))
	for i, h := range s.handles {
		out[i] = h
	}
	return out
}

// Handle returns the handle of tile i.
func (s *TextureSet) Handle(i int) *Handle { return s.handles[i] }

// Realize creates the tile render pipeline and, for every tile, a texture
// filled with the clear color plus the uniform buffer and bind group that
// draw it. Calling Realize again is a no-op.
func (s *TextureSet) Realize(device hal.Device, queue hal.Queue) error {
	if device == nil || queue == nil {
		return ErrNilDevice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return ErrDestroyed
	}
	if s.device != nil {
		return nil
	}
	s.device, s.queue = device, queue

	if err := s.createPipeline(); err != nil {
		s.release()
		return err
	}

	clearOp := clearPayload(s.cfg)
	for _, h := range s.handles {
		g, err := s.createTile(h, clearOp)
		if err != nil {
			s.release()
			return fmt.Errorf("realize tile %d: %w", h.Index, err)
		}
		h.gpu.Store(g)
	}

	tilecanvas.Logger().Info("wgpu: tile textures realized",
		"tiles", len(s.handles), "tileSize", s.cfg.TileSize(), "format", TextureFormat)
	return nil
}

// Apply writes every op whose Target is a ready handle of this set.
//
// Ops for tiles without a texture are skipped; they are not retried.
// Write errors do not stop the remaining ops and are returned joined.
func (s *TextureSet) Apply(ops []tilecanvas.UploadOp) (ApplyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st ApplyStats
	if s.destroyed {
		return st, ErrDestroyed
	}

	var errs []error
	for i := range ops {
		op := &ops[i]
		h, ok := op.Target.(*Handle)
		if !ok || h.Index >= len(s.handles) || s.handles[h.Index] != h {
			st.Foreign++
			continue
		}
		g := h.gpu.Load()
		if g == nil {
			st.NotReady++
			continue
		}
		if err := writeOp(s.queue, g.texture, op); err != nil {
			errs = append(errs, fmt.Errorf("write tile %d: %w", op.TileIndex, err))
			continue
		}
		st.Written++
		st.Bytes += len(op.Data)
	}

	if st.NotReady > 0 || st.Foreign > 0 {
		tilecanvas.Logger().Debug("wgpu: upload ops skipped",
			"notReady", st.NotReady, "foreign", st.Foreign)
	}
	return st, errors.Join(errs...)
}

// Destroy releases all GPU resources. Handles stay valid but are never
// ready again. Destroy is safe to call multiple times.
func (s *TextureSet) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.release()
	s.destroyed = true
}

// release destroys whatever has been created so far.
func (s *TextureSet) release() {
	if s.device == nil {
		return
	}
	for _, h := range s.handles {
		if g := h.gpu.Swap(nil); g != nil {
			s.destroyTile(g)
		}
	}
	s.destroyPipeline()
	s.device, s.queue = nil, nil
}

// destroyPipeline destroys the objects shared by every tile.
func (s *TextureSet) destroyPipeline() {
	if s.pipeline != nil {
		s.device.DestroyRenderPipeline(s.pipeline)
		s.pipeline = nil
	}
	if s.pipeLayout != nil {
		s.device.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.layout != nil {
		s.device.DestroyBindGroupLayout(s.layout)
		s.layout = nil
	}
	if s.sampler != nil {
		s.device.DestroySampler(s.sampler)
		s.sampler = nil
	}
	if s.shader != nil {
		s.device.DestroyShaderModule(s.shader)
		s.shader = nil
	}
}

// writeOp copies op's payload into tex.
func writeOp(queue hal.Queue, tex hal.Texture, op *tilecanvas.UploadOp) error {
	return queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(op.Origin.X), Y: uint32(op.Origin.Y), Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		op.Data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(op.BytesPerRow),
			RowsPerImage: uint32(op.Size.Y),
		},
		&hal.Extent3D{Width: uint32(op.Size.X), Height: uint32(op.Size.Y), DepthOrArrayLayers: 1},
	)
}

// clearPayload returns a whole-tile op filled with cfg's clear color.
func clearPayload(cfg tilecanvas.Config) *tilecanvas.UploadOp {
	ts := cfg.TileSize()
	stride := (ts.X*tilecanvas.BytesPerPixel + tilecanvas.RowAlignment - 1) &^ (tilecanvas.RowAlignment - 1)
	data := make([]byte, stride*ts.Y)
	c := cfg.ClearColor()
	for y := 0; y < ts.Y; y++ {
		row := data[y*stride:]
		for x := 0; x < ts.X; x++ {
			copy(row[x*4:], []byte{c.R, c.G, c.B, c.A})
		}
	}
	return &tilecanvas.UploadOp{
		Size:        ts,
		BytesPerRow: stride,
		Data:        data,
	}
}
