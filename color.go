package tilecanvas

import "image/color"

// PackRGBA8 packs straight-alpha 8-bit channels into a pixel value.
// The little-endian bytes of the result are r, g, b, a.
func PackRGBA8(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// UnpackRGBA8 is the inverse of PackRGBA8.
func UnpackRGBA8(v uint32) (r, g, b, a uint8) {
	return uint8(v), uint8(v >> 8), uint8(v >> 16), uint8(v >> 24)
}

// ColorFrom converts any color.Color to a packed pixel value.
func ColorFrom(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return PackRGBA8(n.R, n.G, n.B, n.A)
}

// NRGBA converts a packed pixel value to color.NRGBA.
func NRGBA(v uint32) color.NRGBA {
	r, g, b, a := UnpackRGBA8(v)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// Common colors.
var (
	White = PackRGBA8(255, 255, 255, 255)
	Black = PackRGBA8(0, 0, 0, 255)
)
