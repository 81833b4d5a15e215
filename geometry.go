package deckhand

import (
	"fmt"
	"image"
)

// GridSpec describes the physical key grid of a panel: how many tiles it has,
// how large each tile is and how much dead space separates adjacent tiles.
// A GridSpec is immutable for the lifetime of a device session.
type GridSpec struct {
	Rows, Cols int // tile grid dimensions, both > 0

	TileWidth  int // per-tile width in pixels, > 0
	TileHeight int // per-tile height in pixels, > 0

	SpacingX int // horizontal gap between tiles in pixels, >= 0
	SpacingY int // vertical gap between tiles in pixels, >= 0
}

// Validate reports whether the grid describes a usable, non-degenerate panel.
func (g GridSpec) Validate() error {
	if g.Rows <= 0 || g.Cols <= 0 {
		return fmt.Errorf("%w: %dx%d tiles", ErrInvalidGridSpec, g.Rows, g.Cols)
	}
	if g.TileWidth <= 0 || g.TileHeight <= 0 {
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalidGridSpec, g.TileWidth, g.TileHeight)
	}
	if g.SpacingX < 0 || g.SpacingY < 0 {
		return fmt.Errorf("%w: spacing %dx%d", ErrInvalidGridSpec, g.SpacingX, g.SpacingY)
	}
	return nil
}

// TileCount returns the number of tiles in the grid.
func (g GridSpec) TileCount() int {
	return g.Rows * g.Cols
}

// PanelSize returns the pixel dimensions of the full panel: all tiles plus
// the spacing between them. The outer edge carries no spacing.
func (g GridSpec) PanelSize() (w, h int) {
	w = g.Cols*g.TileWidth + (g.Cols-1)*g.SpacingX
	h = g.Rows*g.TileHeight + (g.Rows-1)*g.SpacingY
	return w, h
}

// TileRect returns the pixel rectangle of the tile at the given row-major
// index in panel coordinates. Tiles never overlap and never cover the
// spacing between them.
func (g GridSpec) TileRect(index int) (image.Rectangle, error) {
	if index < 0 || index >= g.TileCount() {
		return image.Rectangle{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, g.TileCount())
	}

	row := index / g.Cols
	col := index % g.Cols

	x0 := col * (g.TileWidth + g.SpacingX)
	y0 := row * (g.TileHeight + g.SpacingY)

	return image.Rect(x0, y0, x0+g.TileWidth, y0+g.TileHeight), nil
}
