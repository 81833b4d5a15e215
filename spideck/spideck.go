// Package spideck drives a chain of SPI-attached RGB565 key tiles behind the
// deckhand.Transport interface.
//
// The tile controller speaks a small command/data protocol: commands are
// written with the DC pin low, payloads with the DC pin high. A tile write is
// addressed by index and carries one full RGB565 frame. Key state is read by
// polling a bitmask register.
package spideck

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"go.uber.org/atomic"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/decepticub/deckhand"
	"github.com/decepticub/deckhand/rgb565"
)

// Protocol command bytes.
const (
	cmdDisplayOff = 0xAE
	cmdDisplayOn  = 0xAF
	cmdBrightness = 0xC1 // followed by one byte, 0-255
	cmdWriteTile  = 0x5C // followed by the tile index, then RGB565 data
	cmdKeyState   = 0x40 // full-duplex read of the pressed-key bitmask
)

// Opts is the configuration for the tile chain.
type Opts struct {
	// Key grid dimensions (default: 2 rows by 4 columns).
	Rows, Cols int

	// Per-tile resolution in pixels (default: 72x72).
	TileW, TileH int

	// Optional hardware reset pin.
	RST gpio.PinIO

	// PollInterval is how often the key-state register is polled while a
	// key callback is installed (default: 30ms).
	PollInterval time.Duration

	// Serial is reported through the identification accessors; the tile
	// chain itself has no serial ROM.
	Serial string
}

// Dev is the device handle for a tile chain. It implements
// deckhand.Transport.
type Dev struct {
	c   conn.Conn
	dc  gpio.PinOut
	rst gpio.PinIO

	rows, cols   int
	tileW, tileH int
	serial       string
	pollEvery    time.Duration

	open atomic.Bool
	stop chan struct{}

	mu      sync.Mutex // serializes bus transactions
	cbMu    sync.Mutex
	cb      func(index int, pressed bool)
	pressed []bool
}

// NewSPI creates a device handle on the given SPI port.
//
// The port is configured for 10MHz, Mode0, 8-bit transfers. The DC
// (Data/Command) pin must be an output. opts can be nil for the defaults.
// The device is not touched until Open is called.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	rows, cols := opts.Rows, opts.Cols
	if rows == 0 && cols == 0 {
		rows, cols = 2, 4
	}
	tileW, tileH := opts.TileW, opts.TileH
	if tileW == 0 && tileH == 0 {
		tileW, tileH = 72, 72
	}
	if rows <= 0 || cols <= 0 {
		return nil, errors.New("spideck: rows and cols must be positive")
	}
	if tileW <= 0 || tileH <= 0 {
		return nil, errors.New("spideck: tile size must be positive")
	}
	pollEvery := opts.PollInterval
	if pollEvery <= 0 {
		pollEvery = 30 * time.Millisecond
	}

	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("spideck: connect: %w", err)
	}

	return &Dev{
		c:         c,
		dc:        dc,
		rst:       opts.RST,
		rows:      rows,
		cols:      cols,
		tileW:     tileW,
		tileH:     tileH,
		serial:    opts.Serial,
		pollEvery: pollEvery,
		pressed:   make([]bool, rows*cols),
	}, nil
}

// Open resets the tile chain, clears every tile and turns the panel on.
func (d *Dev) Open() error {
	if d.open.Load() {
		return errors.New("spideck: already open")
	}

	// Hardware reset sequence when a RST pin is wired.
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("spideck: failed to pull RST low: %w", err)
		}
		time.Sleep(200 * time.Millisecond)
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("spideck: failed to pull RST high: %w", err)
		}
		time.Sleep(200 * time.Millisecond)
	}

	if err := d.sendCommands([]byte{cmdDisplayOff}); err != nil {
		return err
	}
	if err := d.clearTiles(); err != nil {
		return err
	}
	if err := d.sendCommands([]byte{cmdDisplayOn}); err != nil {
		return err
	}

	d.stop = make(chan struct{})
	d.open.Store(true)
	go d.pollKeys(d.stop)
	return nil
}

// Close turns the panel off and stops key polling.
func (d *Dev) Close() error {
	if !d.open.Swap(false) {
		return nil
	}
	close(d.stop)
	return d.sendCommands([]byte{cmdDisplayOff})
}

// IsOpen reports whether Open has succeeded and Close has not been called.
func (d *Dev) IsOpen() bool {
	return d.open.Load()
}

// KeyCount returns the number of keys on the chain.
func (d *Dev) KeyCount() int {
	return d.rows * d.cols
}

// KeyLayout returns the key grid dimensions.
func (d *Dev) KeyLayout() (rows, cols int) {
	return d.rows, d.cols
}

// KeyImageFormat returns the per-tile pixel dimensions.
func (d *Dev) KeyImageFormat() deckhand.KeyImageFormat {
	return deckhand.KeyImageFormat{Size: image.Pt(d.tileW, d.tileH)}
}

// SetBrightness sets the panel backlight. percent is clamped to 0-100 and
// scaled to the controller's 8-bit range.
func (d *Dev) SetBrightness(percent int) error {
	if !d.open.Load() {
		return errors.New("spideck: closed")
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return d.sendCommands([]byte{cmdBrightness, byte(percent * 255 / 100)})
}

// SetKeyCallback installs fn, invoked from the polling goroutine on every
// press and release transition.
func (d *Dev) SetKeyCallback(fn func(index int, pressed bool)) {
	d.cbMu.Lock()
	d.cb = fn
	d.cbMu.Unlock()
}

// SetKeyImage writes img to the tile at index, converting to the native
// RGB565 wire format.
func (d *Dev) SetKeyImage(index int, img image.Image) error {
	if !d.open.Load() {
		return errors.New("spideck: closed")
	}
	if index < 0 || index >= d.KeyCount() {
		return fmt.Errorf("spideck: invalid key index %d", index)
	}

	native := rgb565.New(image.Rect(0, 0, d.tileW, d.tileH))
	draw.Draw(native, native.Bounds(), img, img.Bounds().Min, draw.Src)
	return d.writeTile(index, native.Pix)
}

// Serial returns the configured serial string, for diagnostics.
func (d *Dev) Serial() string {
	return d.serial
}

// Firmware returns the protocol revision the driver speaks.
func (d *Dev) Firmware() string {
	return "1"
}

// Model identifies the device for diagnostics.
func (d *Dev) Model() string {
	return fmt.Sprintf("spideck %dx%d", d.cols, d.rows)
}

func (d *Dev) String() string {
	return fmt.Sprintf("spideck.Dev{%dx%d keys, %dx%d px}", d.cols, d.rows, d.tileW, d.tileH)
}

// writeTile sends one full RGB565 frame to the addressed tile.
func (d *Dev) writeTile(index int, pixels []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.sendCommandsLocked([]byte{cmdWriteTile, byte(index)}); err != nil {
		return err
	}
	return d.sendDataLocked(pixels)
}

// clearTiles writes a zeroed frame to every tile.
func (d *Dev) clearTiles() error {
	zeros := make([]byte, d.tileW*d.tileH*2)
	for k := 0; k < d.KeyCount(); k++ {
		if err := d.writeTile(k, zeros); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) sendCommands(cmds []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sendCommandsLocked(cmds)
}

func (d *Dev) sendCommandsLocked(cmds []byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	return d.c.Tx(cmds, nil)
}

func (d *Dev) sendDataLocked(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	return d.c.Tx(data, nil)
}

// readKeys reads the pressed-key bitmask. One bit per key, LSB first, in
// row-major key order.
func (d *Dev) readKeys() ([]bool, error) {
	n := d.KeyCount()
	w := make([]byte, 1+(n+7)/8)
	w[0] = cmdKeyState
	r := make([]byte, len(w))

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.dc.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := d.c.Tx(w, r); err != nil {
		return nil, err
	}

	state := make([]bool, n)
	for i := 0; i < n; i++ {
		state[i] = r[1+i/8]&(1<<(i%8)) != 0
	}
	return state, nil
}

// pollKeys watches the key-state register and fires the callback on every
// transition. Runs until Close.
func (d *Dev) pollKeys(stop <-chan struct{}) {
	tick := time.NewTicker(d.pollEvery)
	defer tick.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tick.C:
		}

		d.cbMu.Lock()
		cb := d.cb
		d.cbMu.Unlock()
		if cb == nil {
			continue
		}

		state, err := d.readKeys()
		if err != nil {
			continue // transient bus errors leave the mask untouched
		}
		for i, pressed := range state {
			if pressed != d.pressed[i] {
				d.pressed[i] = pressed
				cb(i, pressed)
			}
		}
	}
}
