// Package deckhand renders per-key visual state onto grid-addressable key
// displays and suppresses redundant hardware writes.
//
// A panel is a grid of independently addressable tiles (keys). The pipeline
// derives a full-panel image sized to the physical grid, slices it into
// per-tile images, renders per-key icon+label composites behind a
// content-addressed cache, and tracks the last image written to each tile so
// unchanged tiles are never rewritten.
//
// # Pipeline
//
//	config/state -> Controller -> {ComposePanel -> SliceAll} or {Renderer}
//	             -> candidate image + WriteTag -> TileWriter -> Transport
//
// The physical device sits behind the Transport interface; see the spideck
// subpackage for an SPI implementation. Button configuration comes in
// through the read-only ConfigView, and key presses go out through an
// OutputPublisher (see mqttpub).
//
// # Basic Usage
//
//	dev, _ := spideck.NewSPI(port, dcPin, nil)
//	cfg := deckhand.NewStaticConfig(true, []*deckhand.ButtonState{
//		{Icon: "gear", Label: "Setup"},
//	})
//
//	controller, err := deckhand.NewController(dev, cfg, pub, deckhand.Opts{
//		AssetsPath: "assets",
//		Background: "background.png",
//		FontPath:   "fonts/label.ttf",
//	})
//	if err != nil {
//		return err
//	}
//	if err := controller.Open(); err != nil {
//		return err
//	}
//	defer controller.Close()
//
//	// Call controller.Update() whenever the configuration changes.
//
// # Write Suppression
//
// Every tile write, including the first one after open, passes through the
// TileWriter. It keeps one WriteTag per tile describing what the hardware
// currently shows (background slice, empty fill, or a rendered composite)
// and skips the write when the candidate tag is unchanged. Tags reset to the
// unknown sentinel on close, so a reopened session always repaints the whole
// panel.
//
// A failed write leaves the stored tag untouched. If the desired content
// keeps changing the write is retried naturally; if it does not, the tile
// stays stale until the next forced redraw (session open or close).
//
// # Concurrency
//
// The transport delivers key events on its own goroutine; the controller's
// callback only enqueues them for a pump goroutine that notifies the
// OutputPublisher. Update cycles are mutually exclusive, and the render
// cache and write tags are only touched from the update path.
package deckhand
