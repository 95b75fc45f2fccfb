// Package protocol defines the pluggable framing/validation profiles that
// sit between the transports and the hub.
package protocol

import (
	"github.com/Adri-2310/chatMulti/internal/hub"
)

// Profile is one wire shape over the shared core. The two shipped profiles
// (classic and envelope) differ in framing, identity assignment, and room
// policy; they are selected by configuration and never merged.
type Profile interface {
	// Name identifies the profile in config and logs.
	Name() string

	// OnConnect runs once when a connection is accepted, before any frame
	// is read.
	OnConnect(c *hub.Client)

	// Handle decodes and processes one inbound frame. Malformed frames and
	// unknown actions are answered with an error frame; the connection
	// stays open.
	Handle(c *hub.Client, frame []byte)
}

// HandlerFunc processes one decoded request.
type HandlerFunc[T any] func(c *hub.Client, req T)

// Dispatcher maps an action name to its handler.
type Dispatcher[T any] struct {
	handlers map[string]HandlerFunc[T]
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher[T any]() *Dispatcher[T] {
	return &Dispatcher[T]{
		handlers: make(map[string]HandlerFunc[T]),
	}
}

// Register binds an action name to a handler.
func (d *Dispatcher[T]) Register(action string, fn HandlerFunc[T]) {
	d.handlers[action] = fn
}

// Lookup resolves an action name.
func (d *Dispatcher[T]) Lookup(action string) (HandlerFunc[T], bool) {
	fn, ok := d.handlers[action]
	return fn, ok
}
