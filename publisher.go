package deckhand

// OutputPublisher receives key press and release transitions. It is invoked
// from the controller's event pump, never from the device callback itself,
// so implementations may block on I/O.
type OutputPublisher interface {
	SendButtonSelected(key int, selected bool) error
}
