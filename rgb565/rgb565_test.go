package rgb565

import (
	"image"
	"image/color"
	"testing"
)

func TestRGB565RGBA(t *testing.T) {
	tests := []struct {
		name    string
		c       RGB565
		r, g, b uint32
	}{
		{"black", 0x0000, 0x0000, 0x0000, 0x0000},
		{"white", 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF},
		{"pure red", 0xF800, 0xFFFF, 0x0000, 0x0000},
		{"pure green", 0x07E0, 0x0000, 0xFFFF, 0x0000},
		{"pure blue", 0x001F, 0x0000, 0x0000, 0xFFFF},
		// 5-bit 0b10000 replicates to 0x8421, 6-bit 0b100000 to 0x8208.
		{"mid gray-ish", 0x8410, 0x8421, 0x8208, 0x8421},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.r || g != tt.g || b != tt.b || a != 0xFFFF {
				t.Errorf("RGBA() = (%#04x, %#04x, %#04x, %#04x), want (%#04x, %#04x, %#04x, 0xffff)",
					r, g, b, a, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  RGB565
	}{
		{"passthrough", RGB565(0x1234), 0x1234},
		{"black", color.Black, 0x0000},
		{"white", color.White, 0xFFFF},
		{"red", color.RGBA{R: 0xFF, A: 0xFF}, 0xF800},
		{"green", color.RGBA{G: 0xFF, A: 0xFF}, 0x07E0},
		{"blue", color.RGBA{B: 0xFF, A: 0xFF}, 0x001F},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := From(tt.input); got != tt.want {
				t.Errorf("From(%v) = %#04x, want %#04x", tt.input, got, tt.want)
			}
		})
	}
}

func TestModelConvert(t *testing.T) {
	got := Model.Convert(color.RGBA{R: 0xFF, G: 0xFF, A: 0xFF}).(RGB565)
	if got != 0xFFE0 {
		t.Errorf("Model.Convert(yellow) = %#04x, want 0xffe0", got)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		wantStride int
		wantPixLen int
	}{
		{"72x72 tile", image.Rect(0, 0, 72, 72), 144, 10368},
		{"16x16", image.Rect(0, 0, 16, 16), 32, 512},
		{"offset rect", image.Rect(10, 20, 14, 22), 8, 16},
		{"empty", image.Rect(0, 0, 0, 0), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := New(tt.rect)
			if img.Rect != tt.rect {
				t.Errorf("Rect = %v, want %v", img.Rect, tt.rect)
			}
			if img.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
			}
			if len(img.Pix) != tt.wantPixLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantPixLen)
			}
		})
	}
}

func TestByteOrder(t *testing.T) {
	img := New(image.Rect(0, 0, 2, 1))

	img.SetRGB565(0, 0, 0xF800) // red
	img.SetRGB565(1, 0, 0x001F) // blue

	// Big-endian on the wire: high byte first.
	want := []byte{0xF8, 0x00, 0x00, 0x1F}
	for i, b := range want {
		if img.Pix[i] != b {
			t.Errorf("Pix[%d] = %#02x, want %#02x", i, img.Pix[i], b)
		}
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	img := New(image.Rect(0, 0, 4, 2))

	pattern := [][4]RGB565{
		{0x0000, 0xF800, 0x07E0, 0x001F},
		{0xFFFF, 0x1234, 0xABCD, 0x8410},
	}

	for y, row := range pattern {
		for x, v := range row {
			img.SetRGB565(x, y, v)
		}
	}
	for y, row := range pattern {
		for x, want := range row {
			if got := img.RGB565At(x, y); got != want {
				t.Errorf("RGB565At(%d, %d) = %#04x, want %#04x", x, y, got, want)
			}
		}
	}
}

func TestAtSetColorInterface(t *testing.T) {
	img := New(image.Rect(0, 0, 2, 2))

	img.Set(0, 0, color.RGBA{R: 0xFF, A: 0xFF})
	c, ok := img.At(0, 0).(RGB565)
	if !ok {
		t.Fatalf("At(0, 0) returned %T, want RGB565", img.At(0, 0))
	}
	if c != 0xF800 {
		t.Errorf("At(0, 0) = %#04x, want 0xf800", c)
	}

	if img.ColorModel() != Model {
		t.Error("ColorModel() did not return Model")
	}
}

func TestOutOfBounds(t *testing.T) {
	img := New(image.Rect(0, 0, 4, 4))

	for _, p := range []image.Point{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		if got := img.RGB565At(p.X, p.Y); got != 0 {
			t.Errorf("RGB565At(%d, %d) = %#04x, want 0 (out of bounds)", p.X, p.Y, got)
		}
		img.SetRGB565(p.X, p.Y, 0xFFFF) // must not panic or write
	}

	for i, b := range img.Pix {
		if b != 0 {
			t.Fatalf("Pix[%d] = %#02x after out-of-bounds writes, want 0", i, b)
		}
	}
}

func TestOffsetRect(t *testing.T) {
	img := New(image.Rect(100, 50, 104, 52))

	img.SetRGB565(100, 50, 0xBEEF)
	if got := img.RGB565At(100, 50); got != 0xBEEF {
		t.Errorf("RGB565At(100, 50) = %#04x, want 0xbeef", got)
	}
	if img.Pix[0] != 0xBE || img.Pix[1] != 0xEF {
		t.Errorf("Pix[0:2] = %#02x %#02x, want 0xbe 0xef", img.Pix[0], img.Pix[1])
	}
}

func TestPixOffset(t *testing.T) {
	img := New(image.Rect(0, 0, 8, 2))

	tests := []struct {
		x, y, want int
	}{
		{0, 0, 0},
		{1, 0, 2},
		{7, 0, 14},
		{0, 1, 16},
		{3, 1, 22},
	}
	for _, tt := range tests {
		if got := img.PixOffset(tt.x, tt.y); got != tt.want {
			t.Errorf("PixOffset(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}
