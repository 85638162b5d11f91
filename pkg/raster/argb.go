package raster

// Colors are packed 0xAARRGGBB, matching the buffer's storage format.
// Alpha 0 means fully transparent; quantization and dithering treat it as a
// first-class signal and never touch it.

// ARGB packs the four channels into a single pixel value.
func ARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// RGB packs an opaque pixel value.
func RGB(r, g, b uint8) uint32 {
	return ARGB(0xff, r, g, b)
}

// Alpha extracts the alpha channel.
func Alpha(c uint32) uint8 { return uint8(c >> 24) }

// Red extracts the red channel.
func Red(c uint32) uint8 { return uint8(c >> 16) }

// Green extracts the green channel.
func Green(c uint32) uint8 { return uint8(c >> 8) }

// Blue extracts the blue channel.
func Blue(c uint32) uint8 { return uint8(c) }

// WithRGB replaces the color channels of c, preserving its alpha.
func WithRGB(c uint32, r, g, b uint8) uint32 {
	return c&0xff000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Luma returns the perceptual brightness of c in [0, 1] using Rec. 601
// weights. Alpha is ignored.
func Luma(c uint32) float64 {
	return (0.299*float64(Red(c)) + 0.587*float64(Green(c)) + 0.114*float64(Blue(c))) / 255.0
}

// ClampChannel clamps v to the [0, 255] channel range.
func ClampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
