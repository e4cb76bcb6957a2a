package sse

import "sync"

// Event is one progress refresh notification pushed to a subscriber.
type Event struct {
	Generation int64 `json:"generation"`
}

// Hub fans refresh-generation bumps out to the event-stream
// connections of each account. Delivery is best effort: the generation
// counter is monotonic, so a dropped bump is subsumed by the next one
// and clients always converge on the next poll.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[chan Event]struct{}{}}
}

// Subscribe registers a listener for one account. The returned cancel
// must be called when the connection goes away; it is safe to call
// more than once.
func (h *Hub) Subscribe(accountID string) (<-chan Event, func()) {
	ch := make(chan Event, 8)
	h.mu.Lock()
	if h.subs[accountID] == nil {
		h.subs[accountID] = map[chan Event]struct{}{}
	}
	h.subs[accountID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[accountID], ch)
			if len(h.subs[accountID]) == 0 {
				delete(h.subs, accountID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers a bump to every live subscriber of the account.
// Never blocks: a subscriber with a full buffer misses the event.
func (h *Hub) Publish(accountID string, generation int64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[accountID] {
		select {
		case ch <- Event{Generation: generation}:
		default:
		}
	}
}
