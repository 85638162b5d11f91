// Package raster provides the fixed-size pixel buffer that content
// generators draw into and the retro pipeline transforms.
//
// A Buffer is a dense width×height grid of packed 0xAARRGGBB values with
// bounds-forgiving access: reads outside the buffer return transparent black
// and writes outside are ignored. Geometric code (disc sweeps, negative blit
// offsets, outline overscan) relies on this so it never has to guard edges.
//
// Buffers convert to standard library images for PNG export; integer
// upscaling for viewing uses nearest-neighbor so pixel edges stay crisp.
package raster

import (
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Buffer is a fixed-size ARGB pixel grid. It never resizes after
// construction; all operations are O(1) or O(area).
type Buffer struct {
	width  int
	height int
	pix    []uint32 // row-major, index = y*width + x
}

// NewBuffer allocates a transparent buffer with the given dimensions.
// Non-positive dimensions yield a zero-area buffer on which every operation
// is a no-op.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{width: width, height: height, pix: make([]uint32, width*height)}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Pix exposes the backing slice so transforms can iterate without per-pixel
// bounds checks. Layout is row-major packed ARGB.
func (b *Buffer) Pix() []uint32 { return b.pix }

// Clear fills the whole buffer with c.
func (b *Buffer) Clear(c uint32) {
	for i := range b.pix {
		b.pix[i] = c
	}
}

// Set writes a pixel. Out-of-bounds coordinates are silently ignored.
func (b *Buffer) Set(x, y int, c uint32) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.pix[y*b.width+x] = c
}

// Get reads a pixel. Out-of-bounds coordinates return transparent black.
func (b *Buffer) Get(x, y int) uint32 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0
	}
	return b.pix[y*b.width+x]
}

// Blit copies src into b at offset (dx, dy). Only pixels with non-zero alpha
// are copied; the copy is clipped to b's bounds.
func (b *Buffer) Blit(src *Buffer, dx, dy int) {
	for sy := 0; sy < src.height; sy++ {
		ty := sy + dy
		if ty < 0 || ty >= b.height {
			continue
		}
		for sx := 0; sx < src.width; sx++ {
			tx := sx + dx
			if tx < 0 || tx >= b.width {
				continue
			}
			c := src.pix[sy*src.width+sx]
			if Alpha(c) == 0 {
				continue
			}
			b.pix[ty*b.width+tx] = c
		}
	}
}

// Clone returns a deep copy of b. The retro outline stage snapshots the
// buffer this way so its own writes do not feed back into the solidity test.
func (b *Buffer) Clone() *Buffer {
	out := NewBuffer(b.width, b.height)
	copy(out.pix, b.pix)
	return out
}

// ToImage converts the buffer to a straight-alpha NRGBA image, alpha last.
func (b *Buffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for i, c := range b.pix {
		base := i * 4
		img.Pix[base+0] = Red(c)
		img.Pix[base+1] = Green(c)
		img.Pix[base+2] = Blue(c)
		img.Pix[base+3] = Alpha(c)
	}
	return img
}

// EncodePNG writes the buffer to w as a PNG.
func (b *Buffer) EncodePNG(w io.Writer) error {
	return png.Encode(w, b.ToImage())
}

// Scale returns the buffer upscaled by an integer factor using
// nearest-neighbor sampling, which keeps pixel-art edges hard. Factors below
// 2 return the buffer unchanged.
func (b *Buffer) Scale(factor int) *image.NRGBA {
	src := b.ToImage()
	if factor < 2 {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.width*factor, b.height*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
