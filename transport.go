package deckhand

import "image"

// KeyImageFormat describes the pixel format a transport expects for key
// images. Size is the dimensions of one tile.
type KeyImageFormat struct {
	Size image.Point
}

// Transport is the physical key-display device. Implementations own the wire
// protocol; the controller only hands them finished per-tile images.
//
// SetKeyCallback installs a function invoked from the transport's own
// goroutine whenever a key changes state. The callback must return quickly
// and must not call back into the transport.
//
// The identification accessors (Serial, Firmware, Model) are used for
// diagnostics only.
type Transport interface {
	Open() error
	Close() error
	IsOpen() bool

	KeyCount() int
	KeyLayout() (rows, cols int)
	KeyImageFormat() KeyImageFormat

	SetBrightness(percent int) error
	SetKeyCallback(fn func(index int, pressed bool))
	SetKeyImage(index int, img image.Image) error

	Serial() string
	Firmware() string
	Model() string
}
