package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"uniattend/internal/metrics"
)

// MemoryHub is a channel-backed hub for single-process deployments and tests.
type MemoryHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan Event
}

// NewMemoryHub creates an empty hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[string]map[int]chan Event)}
}

// Publish delivers the event to every open subscription on the topic, in
// order. A subscriber that has fallen more than bufferSize events behind is
// skipped rather than blocking the writer.
func (h *MemoryHub) Publish(_ context.Context, topic, kind string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	evt := Event{Topic: topic, Kind: kind, Payload: raw}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[topic] {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

const bufferSize = 16

// Subscribe opens a subscription on the topic.
func (h *MemoryHub) Subscribe(_ context.Context, topic string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, bufferSize)
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]chan Event)
	}
	h.subs[topic][id] = ch
	metrics.Subscribers.Inc()

	return &Subscription{
		C: ch,
		close: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if cur, ok := h.subs[topic][id]; ok {
				delete(h.subs[topic], id)
				close(cur)
			}
		},
	}, nil
}
