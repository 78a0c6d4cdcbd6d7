package events

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Broker fans events out to every subscriber. Slow subscribers miss events
// instead of blocking the publisher.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]chan Event
	closed      bool

	logger *zap.Logger
}

func NewBroker(logger *zap.Logger) *Broker {
	return &Broker{
		subscribers: make(map[uuid.UUID]chan Event),

		logger: logger,
	}
}

// Emit publishes payload under name.
func (b *Broker) Emit(name string, payload any) {
	event := Event{
		ID:      uuid.New(),
		Name:    name,
		Payload: payload,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				zap.Stringer("subscriber", id),
				zap.String("event", name))
		}
	}

	b.logger.Debug("event emitted",
		zap.String("event", name),
		zap.Int("subscribers", len(b.subscribers)))
}

// Subscribe registers a new subscriber. The channel is closed on Unsubscribe or Close.
func (b *Broker) Subscribe() (uuid.UUID, <-chan Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return uuid.Nil, nil, ErrBrokerClosed
	}

	id := uuid.New()
	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch

	return id, ch, nil
}

// Unsubscribe removes a subscriber. Unknown ids are ignored.
func (b *Broker) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[id]
	if !ok {
		return
	}

	delete(b.subscribers, id)
	close(ch)
}

// Close disconnects all subscribers. It is safe to call more than once.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
