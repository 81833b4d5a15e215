package deckhand

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"path/filepath"

	"github.com/disintegration/gift"
	"github.com/gogpu/gg"
	ggtext "github.com/gogpu/gg/text"
)

const (
	labelMargin = 20 // bottom pixel rows reserved for the label
	labelInset  = 5  // label baseline distance from the bottom edge

	// DefaultFontSize is the label size in points when RendererOpts leaves
	// FontSize zero.
	DefaultFontSize = 14
)

// RenderKey identifies one rendered tile composite. Two keys are equal iff
// all three fields match exactly; it is the renderer's cache lookup key.
type RenderKey struct {
	Icon       string // icon asset name, empty for label-only tiles
	Label      string
	Background string // hex background color, e.g. "#9D2235"
}

// RendererOpts configures a Renderer.
type RendererOpts struct {
	// AssetsPath is the root directory for icon assets. An icon named "gear"
	// resolves to <AssetsPath>/gear.png.
	AssetsPath string

	// FontPath names a TTF/OTF file for label drawing. When empty, labels
	// are skipped.
	FontPath string

	// FontSize is the label size in points. Zero means DefaultFontSize.
	FontSize float64
}

// Renderer rasterizes per-tile icon+label composites behind an unbounded
// content-addressed cache. The practical keyspace is small (configured
// buttons times two selection states), so trading memory for skipping
// repeated rasterization on every update tick is deliberate.
type Renderer struct {
	tileW, tileH int
	face         ggtext.Face
	cache        map[RenderKey]*image.RGBA

	// loadIcon resolves an icon identity to its pixels. Tests replace it to
	// count loads and to render without touching the filesystem.
	loadIcon func(name string) (image.Image, error)
}

// NewRenderer returns a renderer for tiles of the given pixel size.
func NewRenderer(tileW, tileH int, opts RendererOpts) (*Renderer, error) {
	if tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("%w: tile size %dx%d", ErrInvalidGridSpec, tileW, tileH)
	}

	r := &Renderer{
		tileW: tileW,
		tileH: tileH,
		cache: make(map[RenderKey]*image.RGBA),
	}
	assets := opts.AssetsPath
	r.loadIcon = func(name string) (image.Image, error) {
		return loadRGBA(filepath.Join(assets, name+".png"))
	}

	if opts.FontPath != "" {
		source, err := ggtext.NewFontSourceFromFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("deckhand: load font %q: %w", opts.FontPath, err)
		}
		size := opts.FontSize
		if size == 0 {
			size = DefaultFontSize
		}
		r.face = source.Face(size)
	}
	return r, nil
}

// RenderTile returns the composite for key, rasterizing on a cache miss.
// The returned buffer is shared with the cache and must not be mutated.
func (r *Renderer) RenderTile(key RenderKey) (*image.RGBA, error) {
	if img, ok := r.cache[key]; ok {
		return img, nil
	}

	dc := gg.NewContext(r.tileW, r.tileH)
	dc.ClearWithColor(gg.Hex(key.Background))

	if key.Icon != "" {
		icon, err := r.loadIcon(key.Icon)
		if err != nil {
			return nil, err
		}
		tinted := r.fitIcon(icon)
		x := (r.tileW - tinted.Bounds().Dx()) / 2
		y := (r.tileH - labelMargin - tinted.Bounds().Dy()) / 2
		dc.DrawImage(gg.ImageBufFromImage(tinted), float64(x), float64(y))
	}

	if r.face != nil {
		dc.SetFont(r.face)
		dc.SetHexColor(ForegroundColor)
		dc.DrawStringAnchored(key.Label, float64(r.tileW)/2, float64(r.tileH-labelInset), 0.5, 0)
	}

	out := toRGBA(dc.Image())
	r.cache[key] = out
	return out, nil
}

// RenderEmpty returns the fixed "not active" fill used for unconfigured
// tiles. A single constant image, so it bypasses the cache.
func (r *Renderer) RenderEmpty() *image.RGBA {
	dc := gg.NewContext(r.tileW, r.tileH)
	dc.ClearWithColor(gg.Hex(NotActiveColor))
	return toRGBA(dc.Image())
}

// fitIcon recolors the icon to the fixed foreground (keeping alpha) and
// scales it to fit the tile above the label row.
func (r *Renderer) fitIcon(icon image.Image) *image.RGBA {
	availW, availH := r.tileW, r.tileH-labelMargin
	if availH < 1 {
		availH = r.tileH
	}

	w, h := icon.Bounds().Dx(), icon.Bounds().Dy()
	scale := math.Min(float64(availW)/float64(w), float64(availH)/float64(h))
	tw := int(float64(w)*scale + 0.5)
	th := int(float64(h)*scale + 0.5)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	g := gift.New(
		gift.ColorFunc(func(r0, g0, b0, a0 float32) (float32, float32, float32, float32) {
			return 1, 1, 1, a0 // fixed white foreground
		}),
		gift.Resize(tw, th, gift.LanczosResampling),
	)
	out := image.NewRGBA(g.Bounds(icon.Bounds()))
	g.Draw(out, icon)
	return out
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(image.Rectangle{Max: img.Bounds().Size()})
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
