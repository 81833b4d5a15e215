package deckhand

import (
	"fmt"
	"image"
)

type tagKind uint8

const (
	tagUnknown tagKind = iota // nothing known about the tile; always rewritten
	tagBackground
	tagEmpty
	tagRendered
)

// WriteTag describes what is currently shown on one physical tile. The zero
// value is the unknown sentinel, which compares unequal to every candidate
// so the first update after a session starts always writes.
type WriteTag struct {
	kind tagKind
	key  RenderKey // set only for rendered tags
}

// BackgroundTag marks a tile showing its slice of the default panel image.
func BackgroundTag() WriteTag { return WriteTag{kind: tagBackground} }

// EmptyTag marks a tile showing the "not active" fill.
func EmptyTag() WriteTag { return WriteTag{kind: tagEmpty} }

// RenderedTag marks a tile showing the composite identified by key.
func RenderedTag(key RenderKey) WriteTag { return WriteTag{kind: tagRendered, key: key} }

func (t WriteTag) String() string {
	switch t.kind {
	case tagBackground:
		return "background"
	case tagEmpty:
		return "empty"
	case tagRendered:
		return fmt.Sprintf("rendered(%q, %q, %s)", t.key.Icon, t.key.Label, t.key.Background)
	default:
		return "unknown"
	}
}

// TileWriter is the sole gate on hardware key writes. It keeps one WriteTag
// per tile and skips the write when the candidate tag equals the stored one.
type TileWriter struct {
	tags []WriteTag
}

// NewTileWriter returns a writer for a panel with the given tile count.
// Every tag starts unknown.
func NewTileWriter(tiles int) *TileWriter {
	return &TileWriter{tags: make([]WriteTag, tiles)}
}

// MaybeWrite sends img to the tile via write unless the stored tag for index
// already equals tag. The tag is stored only after a successful write; on
// failure the stale tag remains, so the next differing candidate retries.
func (w *TileWriter) MaybeWrite(index int, tag WriteTag, img image.Image, write func(index int, img image.Image) error) error {
	if index < 0 || index >= len(w.tags) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(w.tags))
	}
	if w.tags[index] == tag {
		return nil
	}
	if err := write(index, img); err != nil {
		return err
	}
	w.tags[index] = tag
	return nil
}

// Reset forgets everything known about the panel, forcing the next update to
// rewrite every tile. Called when the device session ends so a reopened
// session never trusts stale state.
func (w *TileWriter) Reset() {
	for i := range w.tags {
		w.tags[i] = WriteTag{}
	}
}
