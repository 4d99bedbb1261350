package wgpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tilecanvas"
)

// TileShaderWGSL is the WGSL source of the tile display shader. Entry points
// are vs_main and fs_main; bindings are the TileUniforms buffer (0), the tile
// texture (1) and a sampler (2).
//
//go:embed shaders/tile.wgsl
var TileShaderWGSL string

// UniformSize is the size in bytes of the TileUniforms buffer.
const UniformSize = 16

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile tile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile tile shader: SPIR-V length %d not word aligned", len(spirvBytes))
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

func createShaderModule(device hal.Device, spirv []uint32) (hal.ShaderModule, error) {
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "tilecanvas_tile_shader",
		Source: hal.ShaderSource{
			SPIRV: spirv,
		},
	})
}

// TileUniforms returns the TileUniforms buffer contents for drawing tile k of
// cfg into a viewport of the given size, with the canvas centred.
//
// The layout is offset.xy followed by scale.xy as little-endian float32.
// Tiles presented bottom-up (Placement.FlipY) get a negative scale.y so their
// row 0 lands at the bottom of the quad.
func TileUniforms(cfg tilecanvas.Config, k image.Point, viewport image.Point) [UniformSize]byte {
	p := cfg.TilePlacement(k)
	ts := cfg.TileSize()
	vw, vh := float32(viewport.X), float32(viewport.Y)
	tw, th := float32(ts.X), float32(ts.Y)

	off := [2]float32{2 * (p.X - tw/2) / vw, 0}
	scale := [2]float32{2 * tw / vw, 2 * th / vh}
	if p.FlipY {
		// World Y points up: the quad starts at the tile's top edge.
		off[1] = 2 * (p.Y + th/2) / vh
		scale[1] = -scale[1]
	} else {
		// World Y points down: the quad starts at the tile's bottom edge.
		off[1] = -2 * (p.Y + th/2) / vh
	}

	var out [UniformSize]byte
	for i, v := range [4]float32{off[0], off[1], scale[0], scale[1]} {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
