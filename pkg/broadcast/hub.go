package broadcast

import (
	"context"
	"sync"
)

const defaultQueueSize = 64

// Hub is an in-process Broker. Publishes are serialized so every subscriber
// observes the same order, and never block on a slow subscriber: a message
// that does not fit in a subscriber's queue is dropped for that subscriber.
type Hub struct {
	mu        sync.Mutex
	channels  map[string]map[*hubSubscription]struct{}
	queueSize int
	closed    bool
	onDrop    func(channel string)
}

type HubOption func(*Hub)

// WithQueueSize sets the per-subscriber buffer.
func WithQueueSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// WithDropHook is called whenever a message is dropped for a full subscriber.
func WithDropHook(fn func(channel string)) HubOption {
	return func(h *Hub) { h.onDrop = fn }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		channels:  make(map[string]map[*hubSubscription]struct{}),
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Publish(_ context.Context, channel string, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}

	for sub := range h.channels[channel] {
		msg := make([]byte, len(payload))
		copy(msg, payload)

		select {
		case sub.ch <- msg:
		default:
			if h.onDrop != nil {
				h.onDrop(channel)
			}
		}
	}
	return nil
}

func (h *Hub) Subscribe(_ context.Context, channel string) (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}

	sub := &hubSubscription{
		hub:     h,
		channel: channel,
		ch:      make(chan []byte, h.queueSize),
	}
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*hubSubscription]struct{})
	}
	h.channels[channel][sub] = struct{}{}
	return sub, nil
}

// Subscribers returns the number of live subscriptions on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels[channel])
}

// Close ends every subscription and rejects further use.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for _, subs := range h.channels {
		for sub := range subs {
			sub.closeLocked()
		}
	}
	h.channels = nil
	return nil
}

type hubSubscription struct {
	hub     *Hub
	channel string
	ch      chan []byte
	once    sync.Once
}

func (s *hubSubscription) Messages() <-chan []byte {
	return s.ch
}

func (s *hubSubscription) Close() error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.closeLocked()
	return nil
}

// closeLocked must be called with hub.mu held.
func (s *hubSubscription) closeLocked() {
	s.once.Do(func() {
		if subs, ok := s.hub.channels[s.channel]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.hub.channels, s.channel)
			}
		}
		close(s.ch)
	})
}
