package chathub

import (
	"sync"

	"foodhub/pkg/logger"
)

// Subscription detaches one handler from its topic without affecting the
// others. Safe to call more than once.
type Subscription struct {
	cancel func()
}

func (s Subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}

type topicHandler[T any] struct {
	id uint64
	fn func(T)
}

// Topic is an ordered fan-out of one event kind to its subscribers.
// Handlers run in registration order; a panicking handler is logged and
// skipped so it cannot break delivery to the rest.
type Topic[T any] struct {
	mu       sync.Mutex
	nextID   uint64
	handlers []topicHandler[T]
}

func (t *Topic[T]) Subscribe(fn func(T)) Subscription {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.handlers = append(t.handlers, topicHandler[T]{id: id, fn: fn})
	t.mu.Unlock()

	return Subscription{cancel: func() { t.unsubscribe(id) }}
}

func (t *Topic[T]) unsubscribe(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, h := range t.handlers {
		if h.id == id {
			t.handlers = append(t.handlers[:i], t.handlers[i+1:]...)
			return
		}
	}
}

func (t *Topic[T]) Emit(event T) {
	t.mu.Lock()
	handlers := make([]topicHandler[T], len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.Unlock()

	for _, h := range handlers {
		invoke(h.fn, event)
	}
}

func invoke[T any](fn func(T), event T) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("chat event handler panicked: %v", r)
		}
	}()
	fn(event)
}
