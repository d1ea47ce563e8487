package event

import (
	"log/slog"
	"sync"
)

type HandlerFunc func(raw any)

// Bus fans events out to subscribers by name. Handlers run synchronously on
// the publishing goroutine, which for character events is the frame loop, so
// they must not block.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	next     uint64
	ids      map[string][]uint64
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
		ids:      make(map[string][]uint64),
	}
}

// Subscribe registers handler for eventName and returns a function that
// removes it again.
func (b *Bus) Subscribe(eventName string, handler HandlerFunc) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.handlers[eventName] = append(b.handlers[eventName], handler)
	b.ids[eventName] = append(b.ids[eventName], id)
	return func() { b.unsubscribe(eventName, id) }
}

func (b *Bus) unsubscribe(eventName string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := b.ids[eventName]
	for i, v := range ids {
		if v != id {
			continue
		}
		handlers := b.handlers[eventName]
		b.handlers[eventName] = append(handlers[:i:i], handlers[i+1:]...)
		b.ids[eventName] = append(ids[:i:i], ids[i+1:]...)
		return
	}
}

// Publish delivers evt to every handler subscribed to eventName. A panicking
// handler is logged and does not stop the others.
func (b *Bus) Publish(eventName string, evt any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]HandlerFunc, len(b.handlers[eventName]))
	copy(handlers, b.handlers[eventName])
	b.mu.RUnlock()

	for _, handler := range handlers {
		dispatch(eventName, handler, evt)
	}
}

func dispatch(eventName string, h HandlerFunc, evt any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "event", eventName, "panic", r)
		}
	}()
	h(evt)
}
