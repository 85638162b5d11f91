package palette

import (
	"testing"

	"github.com/pixelmill/pixelmill/pkg/raster"
)

func TestNearestIndex(t *testing.T) {
	p := New("test", []uint32{
		0xff000000, // black
		0xffffffff, // white
		0xffff0000, // red
	}, 3)

	tests := []struct {
		name  string
		color uint32
		want  int
	}{
		{"exact black", 0xff000000, 0},
		{"near black", 0xff101010, 0},
		{"near white", 0xffeeeeee, 1},
		{"near red", 0xffe01010, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.NearestIndex(tt.color); got != tt.want {
				t.Errorf("NearestIndex(%#08x) = %d, want %d", tt.color, got, tt.want)
			}
		})
	}
}

func TestNearestIndexTieBreak(t *testing.T) {
	// Duplicate colors: an exact tie must resolve to the lowest index.
	p := New("dupes", []uint32{0xff808080, 0xff808080, 0xff000000}, 3)
	if got := p.NearestIndex(0xff808080); got != 0 {
		t.Errorf("tie should resolve to first occurrence, got index %d", got)
	}

	// Equidistant distinct colors: 0x40 is the same distance from 0x30 and
	// 0x50 on a single channel.
	p2 := New("equi", []uint32{raster.RGB(0x30, 0, 0), raster.RGB(0x50, 0, 0)}, 2)
	if got := p2.NearestIndex(raster.RGB(0x40, 0, 0)); got != 0 {
		t.Errorf("equidistant tie should pick index 0, got %d", got)
	}
}

func TestNearestTwo(t *testing.T) {
	p := New("test", []uint32{0xff000000, 0xff404040, 0xffffffff}, 3)
	first, second := p.NearestTwo(0xff101010)
	if first != 0xff000000 {
		t.Errorf("first = %#08x, want black", first)
	}
	if second != 0xff404040 {
		t.Errorf("second = %#08x, want dark gray", second)
	}

	single := New("one", []uint32{0xff123456}, 1)
	f, s := single.NearestTwo(0xff000000)
	if f != 0xff123456 || s != 0xff123456 {
		t.Errorf("single-color palette should return itself twice: %#08x %#08x", f, s)
	}
}

func TestQuantizePreservesAlpha(t *testing.T) {
	p := New("bw", []uint32{0xff000000, 0xffffffff}, 2)
	buf := raster.NewBuffer(2, 2)
	buf.Set(0, 0, raster.ARGB(0x80, 0x20, 0x20, 0x20)) // semi-transparent dark
	buf.Set(1, 0, raster.ARGB(0x00, 0xab, 0xcd, 0xef)) // fully transparent

	Quantize(p, buf)

	got := buf.Get(0, 0)
	if raster.Alpha(got) != 0x80 {
		t.Errorf("alpha changed: %#02x, want 0x80", raster.Alpha(got))
	}
	if raster.Red(got) != 0 || raster.Green(got) != 0 || raster.Blue(got) != 0 {
		t.Errorf("RGB not quantized to black: %#08x", got)
	}

	// Transparent pixels are never quantized.
	if got := buf.Get(1, 0); got != raster.ARGB(0x00, 0xab, 0xcd, 0xef) {
		t.Errorf("transparent pixel touched: %#08x", got)
	}
}

func TestQuantizeRangeClosure(t *testing.T) {
	p := New("gb", []uint32{0xff0f380f, 0xff306230, 0xff8bac0f, 0xff9bbc0f}, 4)
	buf := raster.NewBuffer(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			buf.Set(x, y, raster.RGB(uint8(x*32), uint8(y*32), uint8((x+y)*16)))
		}
	}

	Quantize(p, buf)

	members := make(map[uint32]bool)
	for _, c := range p.Colors {
		members[c&0x00ffffff] = true
	}
	for i, c := range buf.Pix() {
		if !members[c&0x00ffffff] {
			t.Fatalf("pixel %d RGB %#06x not in palette", i, c&0x00ffffff)
		}
	}
}

func TestQuantizeEmptyPalette(t *testing.T) {
	buf := raster.NewBuffer(2, 2)
	buf.Clear(raster.RGB(10, 20, 30))
	Quantize(Palette{}, buf) // must not panic
	if got := buf.Get(0, 0); got != raster.RGB(10, 20, 30) {
		t.Errorf("empty palette modified buffer: %#08x", got)
	}
}
