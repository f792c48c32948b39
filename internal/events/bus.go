package events

import (
	"context"
	"sync"
)

// Handler receives published events.
type Handler func(ctx context.Context, e Event)

// Bus delivers each published event synchronously to every handler registered
// before the Publish call, in registration order. Handlers must not block for long.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers []subscription
}

type subscription struct {
	id uint64
	fn Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a func that removes it. Unsubscribing twice is a no-op.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.handlers {
				if s.id == id {
					b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish fans e out to the current handlers. A nil Bus drops the event.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers))
	for i, s := range b.handlers {
		hs[i] = s.fn
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ctx, e)
	}
}

// Len reports the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Stream returns a channel that receives published events. Events are dropped
// when the buffer is full. Cancelling ctx unsubscribes and closes the channel.
func (b *Bus) Stream(ctx context.Context, buf int) <-chan Event {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Event, buf)

	var (
		mu     sync.Mutex
		closed bool
	)
	unsubscribe := b.Subscribe(func(_ context.Context, e Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}
