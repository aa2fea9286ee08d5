package broker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryBroker fans every published message out to all current
// subscribers of its topic.
type InMemoryBroker struct {
	mu      sync.Mutex
	subs    map[string][]chan Message
	offsets map[string]int64
	closed  bool

	// done is closed by Close to release publishers blocked on a full buffer.
	done     chan struct{}
	inflight sync.WaitGroup
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subs:    make(map[string][]chan Message),
		offsets: make(map[string]int64),
		done:    make(chan struct{}),
	}
}

// Publish delivers the message to every subscriber of topic. It blocks while
// a subscriber's buffer is full, until ctx is done or the broker is closed.
// The broker lock is not held while sending, so a slow reader never blocks
// Subscribe or Close.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("broker is closed")
	}
	offset := b.offsets[topic]
	b.offsets[topic]++
	subs := append([]chan Message(nil), b.subs[topic]...)
	b.inflight.Add(1)
	b.mu.Unlock()
	defer b.inflight.Done()

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Offset:    offset,
		Timestamp: time.Now().UnixMilli(),
	}
	for _, ch := range subs {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return fmt.Errorf("broker is closed")
		}
	}
	return nil
}

// Subscribe registers a buffered channel for topic.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	ch := make(chan Message, 100)
	b.subs[topic] = append(b.subs[topic], ch)
	return ch, nil
}

// Close releases blocked publishers, waits for them to return and closes all
// subscriber channels.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	b.inflight.Wait()
	for _, chans := range subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	return nil
}
