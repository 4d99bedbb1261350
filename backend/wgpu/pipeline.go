package wgpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tilecanvas"
)

// TargetFormat is the color target format of the tile render pipeline.
const TargetFormat = gputypes.TextureFormatBGRA8Unorm

// quadVertices is the vertex count of one tile quad (two triangles).
const quadVertices = 6

// createPipeline creates the sampler, shader module, layouts and render
// pipeline shared by every tile. On error the caller releases whatever
// was created.
func (s *TextureSet) createPipeline() error {
	sampler, err := s.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "tilecanvas_tile_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
		Anisotropy:   1,
	})
	if err != nil {
		return fmt.Errorf("create tile sampler: %w", err)
	}
	s.sampler = sampler

	spirv, err := compileSPIRV(TileShaderWGSL)
	if err != nil {
		return err
	}
	shader, err := createShaderModule(s.device, spirv)
	if err != nil {
		return fmt.Errorf("create tile shader module: %w", err)
	}
	s.shader = shader

	layout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "tilecanvas_tile_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: UniformSize,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create tile bind group layout: %w", err)
	}
	s.layout = layout

	pipeLayout, err := s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "tilecanvas_tile_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.layout},
	})
	if err != nil {
		return fmt.Errorf("create tile pipeline layout: %w", err)
	}
	s.pipeLayout = pipeLayout

	pipeline, err := s.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "tilecanvas_tile_pipeline",
		Layout: s.pipeLayout,
		Vertex: hal.VertexState{
			Module:     s.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     s.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    TargetFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.DefaultMultisampleState(),
	})
	if err != nil {
		return fmt.Errorf("create tile render pipeline: %w", err)
	}
	s.pipeline = pipeline
	return nil
}

// createTile creates the texture, view, uniform buffer and bind group of
// tile h and clears the texture. Nothing is left behind on error.
func (s *TextureSet) createTile(h *Handle, clearOp *tilecanvas.UploadOp) (*tileGPU, error) {
	ts := s.cfg.TileSize()
	g := &tileGPU{}

	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("tilecanvas_tile_%d_%d", h.Key.X, h.Key.Y),
		Size:          hal.Extent3D{Width: uint32(ts.X), Height: uint32(ts.Y), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TextureFormat,
		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	g.texture = tex

	if err := writeOp(s.queue, tex, clearOp); err != nil {
		s.destroyTile(g)
		return nil, fmt.Errorf("clear texture: %w", err)
	}

	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "tilecanvas_tile_view",
		Format:        TextureFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		s.destroyTile(g)
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	g.view = view

	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "tilecanvas_tile_uniforms",
		Size:  UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		s.destroyTile(g)
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}
	g.uniforms = buf

	if err := s.writeUniforms(h, g); err != nil {
		s.destroyTile(g)
		return nil, err
	}

	bind, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "tilecanvas_tile_bind",
		Layout: s.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: UniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: s.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		s.destroyTile(g)
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	g.bind = bind
	return g, nil
}

func (s *TextureSet) destroyTile(g *tileGPU) {
	if g.bind != nil {
		s.device.DestroyBindGroup(g.bind)
	}
	if g.uniforms != nil {
		s.device.DestroyBuffer(g.uniforms)
	}
	if g.view != nil {
		s.device.DestroyTextureView(g.view)
	}
	if g.texture != nil {
		s.device.DestroyTexture(g.texture)
	}
}

// writeUniforms uploads the quad placement of tile h for the current
// viewport.
func (s *TextureSet) writeUniforms(h *Handle, g *tileGPU) error {
	u := TileUniforms(s.cfg, h.Key, s.viewport)
	if err := s.queue.WriteBuffer(g.uniforms, 0, u[:]); err != nil {
		return fmt.Errorf("write uniforms: %w", err)
	}
	return nil
}

// SetViewport sets the size in pixels of the render target the tiles are
// drawn into. The canvas is centred in it. Before Realize the size is only
// recorded; afterwards every tile's uniforms are rewritten.
func (s *TextureSet) SetViewport(viewport image.Point) error {
	if viewport.X <= 0 || viewport.Y <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidViewport, viewport)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return ErrDestroyed
	}
	s.viewport = viewport
	if s.device == nil {
		return nil
	}

	var errs []error
	for _, h := range s.handles {
		if g := h.gpu.Load(); g != nil {
			if err := s.writeUniforms(h, g); err != nil {
				errs = append(errs, fmt.Errorf("tile %d: %w", h.Index, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Viewport returns the render target size set by SetViewport. It defaults
// to the canvas size.
func (s *TextureSet) Viewport() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Draw records every tile into pass as a six-vertex quad and returns the
// number of tiles drawn. The pass's color target must use TargetFormat.
func (s *TextureSet) Draw(pass hal.RenderPassEncoder) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return 0, ErrDestroyed
	}
	if s.pipeline == nil {
		return 0, ErrNotRealized
	}

	pass.SetPipeline(s.pipeline)
	n := 0
	for _, h := range s.handles {
		g := h.gpu.Load()
		if g == nil {
			continue
		}
		pass.SetBindGroup(0, g.bind, nil)
		pass.Draw(quadVertices, 1, 0, 0)
		n++
	}
	return n, nil
}
