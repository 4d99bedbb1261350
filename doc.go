// Package tilecanvas provides a tiled, software-addressable pixel canvas
// that feeds partial texture uploads to a GPU display surface.
//
// # Overview
//
// The canvas is split into an exact grid of tiles. Draw requests (single
// pixels, rectangles and row-major spans) are written into a CPU backing
// store one tile at a time, and every write records a dirty rectangle on the
// tile it touched. Once per frame the dirty rectangles are drained into a
// list of UploadOp values: self-contained byte regions, padded to the GPU
// row alignment, that a renderer copies into per-tile textures.
//
// The engine never touches GPU memory. Consumers live in sub-packages:
//   - backend: the Sink interface and a registry of sinks by name
//   - backend/wgpu: one hal texture per tile, applied with Queue.WriteTexture
//   - backend/mirror: CPU images mirroring the textures
//   - backend/term: terminal preview built on the mirror
//   - integration/gogpucanvas: gogpu window integration via gpucontext
//
// # Quick Start
//
//	cv := tilecanvas.MustNew(tilecanvas.DefaultConfig())
//	defer cv.Close()
//
//	cv.Enqueue(tilecanvas.DrawPixel{Pos: image.Pt(10, 10), Color: tilecanvas.PackRGBA8(255, 0, 0, 255)})
//	ops := cv.Frame()
//	// hand ops to a renderer, then optionally cv.Recycle(ops)
//
// # Coordinate System
//
// Canvas positions are signed and wrap toroidally: a position past any edge
// continues from the opposite edge. Row 0 is the first row of the backing
// store; whether it is shown at the bottom or the top is a presentation
// choice made by Config.Origin.
//
// # Pixel Format
//
// Pixels are packed RGBA8 values whose little-endian bytes are R, G, B, A.
// Upload payloads carry those bytes in that order on every platform, which
// matches gputypes.TextureFormatRGBA8UnormSrgb.
package tilecanvas
