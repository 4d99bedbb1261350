// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gogpucanvas presents a tilecanvas.Canvas in a gogpu window.
//
// Each canvas tile becomes one window texture. The data flow is:
//
//	Requests -> Canvas (CPU tiles) -> UploadOps -> tile textures -> Window
//
// # Usage
//
//	cv := tilecanvas.MustNew(tilecanvas.DefaultConfig())
//	gc, err := gogpucanvas.New(cv)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gc.Close()
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    cv.Enqueue(requests...)
//	    gc.RenderTo(dc)
//	})
//
// # Texture lifecycle
//
// Textures are created lazily on the first RenderTo, from the tile contents
// at that moment. Upload ops for tiles whose texture does not exist yet are
// skipped: the texture is created from the already updated store. Once a
// texture exists, ops update it through gpucontext.TextureRegionUpdater,
// or through gpucontext.TextureUpdater with the whole tile when region
// updates are not supported.
//
// gogpu draws textures with a top-left origin, so canvases configured with
// tilecanvas.OriginBottomLeft have their rows flipped on upload.
package gogpucanvas
