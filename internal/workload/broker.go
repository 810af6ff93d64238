package workload

import (
	"sync"
	"time"
)

// subscriberBufferSize is the channel buffer for each capacity subscriber.
// Updates are dropped if a subscriber falls this far behind.
const subscriberBufferSize = 16

// CapacityUpdate is one recomputed capacity snapshot pushed to watchers.
type CapacityUpdate struct {
	EditorID       string    `json:"editor_id"`
	LoadPercentage float64   `json:"load_percentage"`
	Status         string    `json:"status"`
	LastUpdated    time.Time `json:"last_updated"`
}

// CapacityBroker fans recomputed capacity updates out to per-editor
// subscribers. It is safe for concurrent use.
//
// Closed topics are retained as markers so that late subscribers (those
// subscribing after an editor is deactivated) receive a closed channel
// instead of blocking forever.
type CapacityBroker struct {
	mu     sync.Mutex
	topics map[string]*capacityTopic
}

type capacityTopic struct {
	subs   map[int]chan CapacityUpdate
	nextID int
	closed bool
}

// NewCapacityBroker creates a new capacity broker.
func NewCapacityBroker() *CapacityBroker {
	return &CapacityBroker{
		topics: make(map[string]*capacityTopic),
	}
}

// Subscribe returns a channel that receives capacity updates for the given
// editor and an unsubscribe function. If the editor's topic has been closed,
// the returned channel is immediately closed.
func (b *CapacityBroker) Subscribe(editorID string) (<-chan CapacityUpdate, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[editorID]
	if !ok {
		t = &capacityTopic{subs: make(map[int]chan CapacityUpdate)}
		b.topics[editorID] = t
	}

	ch := make(chan CapacityUpdate, subscriberBufferSize)
	if t.closed {
		close(ch)
		return ch, func() {}
	}

	id := t.nextID
	t.nextID++
	t.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(t.subs, id)
	}
}

// Publish sends a capacity update to all subscribers of the editor.
// Updates are dropped for subscribers whose buffers are full.
func (b *CapacityBroker) Publish(u CapacityUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[u.EditorID]
	if !ok || t.closed {
		return
	}

	for _, ch := range t.subs {
		select {
		case ch <- u:
		default:
			// Drop for slow subscribers; the next update supersedes anyway.
		}
	}
}

// Close signals that no more updates will be published for the editor.
// All subscriber channels are closed and future Subscribe calls return a
// closed channel.
func (b *CapacityBroker) Close(editorID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[editorID]
	if !ok {
		// Closed marker so late subscribers get a closed channel.
		b.topics[editorID] = &capacityTopic{subs: make(map[int]chan CapacityUpdate), closed: true}
		return
	}

	t.closed = true
	for id, ch := range t.subs {
		close(ch)
		delete(t.subs, id)
	}
}
