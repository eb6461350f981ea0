// Package event is an in-process publish/subscribe bus. Listeners run on
// the publisher's goroutine, so they must not block.
package event

import (
	"sync"

	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

// Handler receives an event payload.
type Handler func(payload any)

type listener struct {
	id int
	fn Handler
}

type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[string][]listener
}

func New() *Bus {
	return &Bus{handlers: map[string][]listener{}}
}

// Listen registers handler for name. Call the returned func to stop
// listening; it is safe to call more than once.
func (b *Bus) Listen(name string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.handlers[name] = append(b.handlers[name], listener{id: id, fn: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		ls := b.handlers[name]
		for i, l := range ls {
			if l.id == id {
				b.handlers[name] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Fire calls every listener of name. A panicking listener is logged and
// does not stop the others. A nil Bus drops the event.
func (b *Bus) Fire(name string, payload any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	ls := append([]listener(nil), b.handlers[name]...)
	b.mu.RUnlock()

	for _, l := range ls {
		call(name, l.fn, payload)
	}
}

// Listeners reports how many handlers name has.
func (b *Bus) Listeners(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

func call(name string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event: listener panicked", "event", name, "panic", r)
		}
	}()
	fn(payload)
}
