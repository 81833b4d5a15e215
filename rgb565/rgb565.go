// Package rgb565 provides the 16-bit RGB565 image format used by SPI key
// tiles. Pixels are stored big-endian, two bytes per pixel, matching the
// wire order the tile controllers expect.
package rgb565

import (
	"image"
	"image/color"
)

// RGB565 is a 16-bit color: 5 bits red, 6 bits green, 5 bits blue.
type RGB565 uint16

// RGBA converts the RGB565 color to standard RGBA. Channels are expanded to
// 16 bits by bit replication so full intensity maps to 0xFFFF.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c >> 11)
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F

	r = r5<<11 | r5<<6 | r5<<1 | r5>>4
	g = g6<<10 | g6<<4 | g6>>2
	b = b5<<11 | b5<<6 | b5<<1 | b5>>4
	return r, g, b, 0xFFFF
}

// From converts any color to its nearest RGB565 value.
func From(c color.Color) RGB565 {
	if v, ok := c.(RGB565); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return RGB565(r>>11<<11 | g>>10<<5 | b>>11)
}

func toRGB565(c color.Color) color.Color {
	return From(c)
}

// Model converts colors to RGB565.
var Model = color.ModelFunc(toRGB565)

// Image is an RGB565 image backed by a big-endian byte buffer, two bytes per
// pixel. Pix is laid out in the exact order it is sent over the wire.
type Image struct {
	Pix    []byte          // pixel data, big-endian, 2 bytes per pixel
	Stride int             // bytes per row
	Rect   image.Rectangle // image bounds
}

// New creates an RGB565 image with the specified bounds.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	stride := w * 2
	return &Image{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the RGB565 color of the pixel at (x, y).
func (p *Image) RGB565At(x, y int) RGB565 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	i := p.PixOffset(x, y)
	return RGB565(p.Pix[i])<<8 | RGB565(p.Pix[i+1])
}

// Set sets the color of the pixel at (x, y).
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, From(c))
}

// SetRGB565 sets the RGB565 color of the pixel at (x, y). This is faster
// than Set as it skips the color model conversion.
func (p *Image) SetRGB565(x, y int, c RGB565) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i] = byte(c >> 8)
	p.Pix[i+1] = byte(c)
}

// PixOffset returns the byte offset of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}
