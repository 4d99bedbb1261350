// Package wgpu applies tilecanvas upload ops to GPU textures through the
// gogpu/wgpu HAL.
//
// A TextureSet owns one RGBA8 sRGB texture per canvas tile. Its handles are
// bound to the canvas with Canvas.BindHandles; each UploadOp then names the
// handle it must be written to, and TextureSet.Apply issues one
// Queue.WriteTexture per op. Ops whose texture does not exist yet are
// skipped, matching the engine contract that unconsumed ops are not retried.
//
// Realize also builds the tile render pipeline from the WGSL tile shader
// (compiled to SPIR-V with naga) and gives every tile a bind group holding
// its TileUniforms buffer, texture view and a nearest sampler.
// TextureSet.Draw records one six-vertex quad per tile into a host render
// pass; SetViewport repositions the quads for a new target size.
//
// OpenDevice opens the first adapter of any HAL backend. Headless combines
// it with the no-op backend, renders every applied frame into an offscreen
// target and registers as the "wgpu-noop" backend.Sink.
package wgpu
