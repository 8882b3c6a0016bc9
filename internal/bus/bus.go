package bus

import (
	"context"
	"sync"
)

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		mu:   sync.Mutex{},
		subs: make(map[*subscriber[T]]struct{}),
	}
}

type subscriber[T any] struct {
	c    chan T
	done chan struct{}
}

// Hub fans out events to every subscriber. Broadcast blocks until each
// subscriber received the event, unsubscribed, or ctx is done.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[*subscriber[T]]struct{}
}

func (h *Hub[T]) Broadcast(ctx context.Context, event T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.done:
		case sub.c <- event:
		}
	}

	return nil
}

// Subscribe returns a channel of events and a function that unsubscribes.
func (h *Hub[T]) Subscribe(size int) (<-chan T, func()) {
	sub := &subscriber[T]{
		c:    make(chan T, size),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.c, func() {
		once.Do(func() {
			close(sub.done)
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
		})
	}
}

