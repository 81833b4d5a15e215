package deckhand

import "errors"

var (
	// ErrAssetNotFound is returned when a background panel or icon asset
	// cannot be loaded from the assets root.
	ErrAssetNotFound = errors.New("deckhand: asset not found")

	// ErrIndexOutOfRange is returned when a tile index falls outside
	// [0, rows*cols). It indicates a contract violation by the caller.
	ErrIndexOutOfRange = errors.New("deckhand: tile index out of range")

	// ErrInvalidGridSpec is returned when a grid would produce a degenerate
	// panel (zero rows, columns or tile dimensions, or negative spacing).
	ErrInvalidGridSpec = errors.New("deckhand: invalid grid spec")
)
