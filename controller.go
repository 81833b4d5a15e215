package deckhand

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/gogpu/gg"
	log "github.com/s00500/env_logger"
	"go.uber.org/atomic"
)

// Fixed palette, matching the deployed panels.
const (
	ForegroundColor = "#FFFFFF"
	BackgroundColor = "#9D2235"
	ActiveColor     = BackgroundColor
	NotActiveColor  = "#424242"
)

const (
	// DefaultSpacing is the gap between adjacent tiles in panel pixels.
	DefaultSpacing = 36

	// DefaultBrightness is the percentage applied at session open.
	DefaultBrightness = 80

	pressQueueSize = 32
)

// Opts configures a Controller.
type Opts struct {
	// AssetsPath is the directory holding the background panel image and
	// the icon assets.
	AssetsPath string

	// Background is the filename of the full-panel background asset inside
	// AssetsPath.
	Background string

	// FontPath names a TTF/OTF file for key labels. Empty skips labels.
	FontPath string

	// FontSize is the label size in points. Zero means DefaultFontSize.
	FontSize float64

	// Brightness is the percentage set at open. Zero means DefaultBrightness.
	Brightness int

	// SpacingX and SpacingY are the gaps between tiles in panel pixels.
	// Zero means DefaultSpacing.
	SpacingX, SpacingY int
}

type pressEvent struct {
	key     int
	pressed bool
}

// Controller drives one key-display device: it renders tile content from the
// external button configuration and pushes it through the write suppressor to
// the transport. All per-session state (grid, render cache, write tags, the
// precomputed background slices) is owned here, so multiple controllers can
// serve independent devices in one process.
type Controller struct {
	dev Transport
	cfg ConfigView
	pub OutputPublisher

	grid       GridSpec
	renderer   *Renderer
	writer     *TileWriter
	background map[int]*image.RGBA
	brightness int

	opened  atomic.Bool
	mu      sync.Mutex // serializes update cycles and the close redraw
	presses chan pressEvent
	done    chan struct{}
}

// NewController builds a controller for the given device. The grid is
// derived from the transport's layout and key image format; the default
// background panel is composed and sliced once, up front.
func NewController(dev Transport, cfg ConfigView, pub OutputPublisher, opts Opts) (*Controller, error) {
	rows, cols := dev.KeyLayout()
	size := dev.KeyImageFormat().Size

	grid := GridSpec{
		Rows:       rows,
		Cols:       cols,
		TileWidth:  size.X,
		TileHeight: size.Y,
		SpacingX:   opts.SpacingX,
		SpacingY:   opts.SpacingY,
	}
	if grid.SpacingX == 0 {
		grid.SpacingX = DefaultSpacing
	}
	if grid.SpacingY == 0 {
		grid.SpacingY = DefaultSpacing
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	panel, err := ComposePanel(filepath.Join(opts.AssetsPath, opts.Background), grid, gg.Hex(BackgroundColor).Color())
	if err != nil {
		return nil, err
	}
	slices, err := SliceAll(panel, grid)
	if err != nil {
		return nil, err
	}

	renderer, err := NewRenderer(grid.TileWidth, grid.TileHeight, RendererOpts{
		AssetsPath: opts.AssetsPath,
		FontPath:   opts.FontPath,
		FontSize:   opts.FontSize,
	})
	if err != nil {
		return nil, err
	}

	brightness := opts.Brightness
	if brightness == 0 {
		brightness = DefaultBrightness
	}

	return &Controller{
		dev:        dev,
		cfg:        cfg,
		pub:        pub,
		grid:       grid,
		renderer:   renderer,
		writer:     NewTileWriter(grid.TileCount()),
		background: slices,
		brightness: brightness,
	}, nil
}

// Open opens the device, applies brightness, installs the key callback and
// runs the first update cycle. Transport failures propagate so the caller
// can retry the whole session.
func (c *Controller) Open() error {
	if err := c.dev.Open(); err != nil {
		return fmt.Errorf("deckhand: open: %w", err)
	}
	log.Printf("opened %s (sn %q, fw %q)", c.dev.Model(), c.dev.Serial(), c.dev.Firmware())

	if err := c.dev.SetBrightness(c.brightness); err != nil {
		return fmt.Errorf("deckhand: set brightness: %w", err)
	}

	c.presses = make(chan pressEvent, pressQueueSize)
	c.done = make(chan struct{})
	go c.pump(c.presses, c.done)

	c.dev.SetKeyCallback(c.onKey)
	c.opened.Store(true)

	return c.Update()
}

// IsOpen reports whether the underlying device session is open.
func (c *Controller) IsOpen() bool {
	return c.dev.IsOpen()
}

// Close redraws the default background, releases the device and resets the
// write tags so a reopened session rewrites every tile. Transport errors are
// swallowed here; the device may already be gone.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened.Swap(false) {
		return
	}

	if c.dev.IsOpen() {
		for k := 0; k < c.grid.TileCount(); k++ {
			if err := c.writer.MaybeWrite(k, BackgroundTag(), c.background[k], c.dev.SetKeyImage); err != nil {
				log.Warnf("close redraw tile %d: %v", k, err)
				break
			}
		}
		if err := c.dev.Close(); err != nil {
			log.Warnf("close %s: %v", c.dev.Model(), err)
		} else {
			log.Printf("closed %s", c.dev.Model())
		}
	}

	c.writer.Reset()
	close(c.done)
}

// Update runs one full update cycle: compute the desired tag and image for
// every tile and push them through the write suppressor. Only one update is
// in flight at a time.
func (c *Controller) Update() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.RemoteConnected() {
		// Remote side gone: show the default background everywhere. The
		// button configuration is deliberately not consulted.
		for k := 0; k < c.grid.TileCount(); k++ {
			if err := c.writer.MaybeWrite(k, BackgroundTag(), c.background[k], c.dev.SetKeyImage); err != nil {
				return fmt.Errorf("deckhand: write tile %d: %w", k, err)
			}
		}
		return nil
	}

	buttons := c.cfg.Buttons()
	for k := 0; k < c.grid.TileCount(); k++ {
		var button *ButtonState
		if k < len(buttons) {
			button = buttons[k]
		}

		if button == nil {
			if err := c.writer.MaybeWrite(k, EmptyTag(), c.renderer.RenderEmpty(), c.dev.SetKeyImage); err != nil {
				return fmt.Errorf("deckhand: write tile %d: %w", k, err)
			}
			continue
		}

		background := NotActiveColor
		if button.Selected {
			background = ActiveColor
		}
		key := RenderKey{Icon: button.Icon, Label: button.Label, Background: background}

		img, err := c.renderer.RenderTile(key)
		if err != nil {
			return fmt.Errorf("deckhand: render tile %d: %w", k, err)
		}
		if err := c.writer.MaybeWrite(k, RenderedTag(key), img, c.dev.SetKeyImage); err != nil {
			return fmt.Errorf("deckhand: write tile %d: %w", k, err)
		}
	}
	return nil
}

// onKey runs on the transport's callback goroutine. It only enqueues; the
// pump goroutine does the publishing so the callback never blocks.
func (c *Controller) onKey(index int, pressed bool) {
	if !c.opened.Load() {
		return
	}
	select {
	case c.presses <- pressEvent{key: index, pressed: pressed}:
	default:
		log.Warnf("press queue full, dropping key %d", index)
	}
}

func (c *Controller) pump(presses <-chan pressEvent, done <-chan struct{}) {
	for {
		select {
		case ev := <-presses:
			log.Debugf("%s key %d = %v", c.dev.Serial(), ev.key, ev.pressed)
			if err := c.pub.SendButtonSelected(ev.key, ev.pressed); err != nil {
				log.Errorf("publish key %d: %v", ev.key, err)
			}
		case <-done:
			return
		}
	}
}
