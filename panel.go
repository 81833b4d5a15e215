package deckhand

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/disintegration/gift"

	_ "image/jpeg" // background assets may be JPEG
	_ "image/png"  // or PNG
)

// loadRGBA decodes the image at path into an RGBA buffer.
func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrAssetNotFound, path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrAssetNotFound, path, err)
	}

	out := image.NewRGBA(image.Rectangle{Max: src.Bounds().Size()})
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out, nil
}

// ComposePanel builds a full-panel image from a single source asset.
//
// The asset is placed centered on a background-colored canvas that already
// has the panel's aspect ratio, then Lanczos-resampled and center-cropped to
// exactly the panel size. The result is a pure function of its inputs and is
// not cached here; the controller keeps the default background for the
// lifetime of the session.
func ComposePanel(path string, grid GridSpec, background color.Color) (*image.RGBA, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	panelW, panelH := grid.PanelSize()

	src, err := loadRGBA(path)
	if err != nil {
		return nil, err
	}
	srcW, srcH := src.Bounds().Dx(), src.Bounds().Dy()

	// Canvas with the panel's aspect ratio at the asset's height, so the
	// asset keeps its scale relative to the panel until the final resample.
	canvasW := srcH * panelW / panelH
	if canvasW < 1 {
		canvasW = 1
	}
	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, srcH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	offset := (canvasW - srcW) / 2
	draw.Draw(canvas, image.Rect(offset, 0, offset+srcW, srcH), src, src.Bounds().Min, draw.Over)

	g := gift.New(gift.ResizeToFill(panelW, panelH, gift.LanczosResampling, gift.CenterAnchor))
	panel := image.NewRGBA(g.Bounds(canvas.Bounds()))
	g.Draw(panel, canvas)
	return panel, nil
}

// SliceTile crops the tile at index out of a full-panel image onto a fresh
// tile-sized canvas. If the crop region undershoots the tile (the panel image
// was smaller than the derived panel size), the copy is padded rather than
// stretched.
func SliceTile(panel image.Image, grid GridSpec, index int) (*image.RGBA, error) {
	r, err := grid.TileRect(index)
	if err != nil {
		return nil, err
	}

	tile := image.NewRGBA(image.Rect(0, 0, grid.TileWidth, grid.TileHeight))
	region := r.Intersect(panel.Bounds())
	if !region.Empty() {
		dst := image.Rectangle{Max: region.Size()}
		draw.Draw(tile, dst, panel, region.Min, draw.Src)
	}
	return tile, nil
}

// SliceAll slices every tile out of a full-panel image. The controller runs
// this once for the default background so tiles are never recomputed.
func SliceAll(panel image.Image, grid GridSpec) (map[int]*image.RGBA, error) {
	tiles := make(map[int]*image.RGBA, grid.TileCount())
	for k := 0; k < grid.TileCount(); k++ {
		tile, err := SliceTile(panel, grid, k)
		if err != nil {
			return nil, err
		}
		tiles[k] = tile
	}
	return tiles, nil
}
