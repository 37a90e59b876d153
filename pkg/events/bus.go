package events

import "sync"

// BrightnessChangedEvent is broadcast whenever the backlight policy decides
// on a new brightness level. Level is 0 when the backlight is turned off.
type BrightnessChangedEvent struct {
	Level int
}

// Bus is a small broadcast registry for backlight events. Delivery is
// synchronous and in subscription order: Publish invokes every handler to
// completion before it returns, so subscribers observe decisions in the
// order the policy made them.
type Bus struct {
	mu       sync.Mutex
	handlers []func(BrightnessChangedEvent)
}

// New creates a new event bus
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for brightness change events.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(handler func(BrightnessChangedEvent)) func() {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	idx := len(b.handlers) - 1
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < len(b.handlers) {
			b.handlers[idx] = nil
		}
	}
}

// Publish delivers the event to all subscribers before returning.
func (b *Bus) Publish(ev BrightnessChangedEvent) {
	b.mu.Lock()
	handlers := make([]func(BrightnessChangedEvent), 0, len(b.handlers))
	for _, h := range b.handlers {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(ev)
	}
}
