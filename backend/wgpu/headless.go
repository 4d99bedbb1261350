package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/tilecanvas"
	"github.com/gogpu/tilecanvas/backend"
)

func init() {
	backend.Register(HeadlessSinkName, func(cfg tilecanvas.Config) (backend.Sink, error) {
		return OpenHeadless(cfg)
	})
}

// HeadlessSinkName is the registry name of the headless sink.
const HeadlessSinkName = "wgpu-noop"

// Headless is a TextureSet realized on the no-op HAL device. It runs the
// whole texture and draw path without a GPU and implements backend.Sink.
// Every Apply is followed by a render pass that draws the tiles into an
// offscreen target the size of the canvas.
type Headless struct {
	*TextureSet
	dev *Device

	target     hal.Texture
	targetView hal.TextureView
	frames     int
	closed     bool
}

// OpenHeadless opens a no-op device and realizes a TextureSet for cfg on it.
func OpenHeadless(cfg tilecanvas.Config) (*Headless, error) {
	dev, err := OpenDevice(noop.API{})
	if err != nil {
		return nil, err
	}
	set := NewTextureSet(cfg)
	if err := set.Realize(dev.Device, dev.Queue); err != nil {
		dev.Close()
		return nil, err
	}
	h := &Headless{TextureSet: set, dev: dev}
	if err := h.createTarget(); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func (h *Headless) createTarget() error {
	size := h.cfg.CanvasSize()
	tex, err := h.dev.Device.CreateTexture(&hal.TextureDescriptor{
		Label:         "tilecanvas_headless_target",
		Size:          hal.Extent3D{Width: uint32(size.X), Height: uint32(size.Y), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TargetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create headless target: %w", err)
	}
	h.target = tex

	view, err := h.dev.Device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "tilecanvas_headless_target_view",
		Format:        TargetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create headless target view: %w", err)
	}
	h.targetView = view
	return nil
}

// Name returns HeadlessSinkName.
func (h *Headless) Name() string { return HeadlessSinkName }

// Apply writes ops to the tile textures, draws the tiles and returns the
// bytes written.
func (h *Headless) Apply(ops []tilecanvas.UploadOp) (int, error) {
	st, err := h.TextureSet.Apply(ops)
	return st.Bytes, errors.Join(err, h.Render())
}

// Render encodes and submits one render pass drawing every tile into the
// offscreen target. Like Apply it must not be called concurrently.
func (h *Headless) Render() error {
	if h.closed {
		return ErrDestroyed
	}
	device := h.dev.Device
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "tilecanvas_headless_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Destroy()
	if err := encoder.BeginEncoding("tilecanvas_headless"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	c := h.cfg.ClearColor()
	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "tilecanvas_headless_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:    h.targetView,
				LoadOp:  gputypes.LoadOpClear,
				StoreOp: gputypes.StoreOpStore,
				ClearValue: gputypes.Color{
					R: float64(c.R) / 255, G: float64(c.G) / 255,
					B: float64(c.B) / 255, A: float64(c.A) / 255,
				},
			},
		},
	})
	_, err = h.Draw(pass)
	pass.End()
	if err != nil {
		encoder.DiscardEncoding()
		return err
	}

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmd)
	if _, err := h.dev.Queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := device.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	h.frames++
	return nil
}

// Frames returns the number of render passes submitted.
func (h *Headless) Frames() int { return h.frames }

// Close destroys the target, the textures and the device.
func (h *Headless) Close() {
	if h.closed {
		return
	}
	h.closed = true
	if h.targetView != nil {
		h.dev.Device.DestroyTextureView(h.targetView)
		h.targetView = nil
	}
	if h.target != nil {
		h.dev.Device.DestroyTexture(h.target)
		h.target = nil
	}
	h.TextureSet.Destroy()
	h.dev.Close()
}
