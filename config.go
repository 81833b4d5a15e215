package deckhand

import "sync"

// ButtonState describes the desired content of one configured key.
type ButtonState struct {
	Icon     string // icon asset name without extension, empty for label-only keys
	Label    string // text drawn along the bottom edge of the tile
	Selected bool   // selected keys are drawn with the active background color
}

// ConfigView is the read-only view of the external button configuration
// consulted on every update cycle.
//
// Buttons returns the configured keys in tile order. Entries may be nil and
// the slice may be shorter than the tile count; both mean "no key here".
type ConfigView interface {
	RemoteConnected() bool
	Buttons() []*ButtonState
}

// StaticConfig is an in-memory ConfigView, useful for demos and tests.
// It is safe for concurrent use.
type StaticConfig struct {
	mu      sync.RWMutex
	remote  bool
	buttons []*ButtonState
}

// NewStaticConfig returns a StaticConfig with the given initial state.
func NewStaticConfig(remote bool, buttons []*ButtonState) *StaticConfig {
	return &StaticConfig{remote: remote, buttons: buttons}
}

// RemoteConnected implements ConfigView.
func (c *StaticConfig) RemoteConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remote
}

// Buttons implements ConfigView.
func (c *StaticConfig) Buttons() []*ButtonState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*ButtonState, len(c.buttons))
	copy(out, c.buttons)
	return out
}

// SetRemoteConnected updates the remote connection flag.
func (c *StaticConfig) SetRemoteConnected(connected bool) {
	c.mu.Lock()
	c.remote = connected
	c.mu.Unlock()
}

// SetButton replaces the button at the given tile index, growing the slice
// as needed. A nil state marks the slot as empty.
func (c *StaticConfig) SetButton(index int, state *ButtonState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.buttons) <= index {
		c.buttons = append(c.buttons, nil)
	}
	c.buttons[index] = state
}
