package notify

import (
	"sync"

	"github.com/alx-polly/backend/internal/entity"
	"github.com/alx-polly/backend/internal/results"
)

// PollUpdate is the payload fanned out to streaming clients after a vote.
type PollUpdate struct {
	Poll    entity.Poll           `json:"poll"`
	Options []entity.OptionResult `json:"options"`
	Stats   results.Stats         `json:"stats"`
}

const subscriberBuffer = 8

// Broker fans poll updates out to subscribers of a poll id. Emission is
// non-blocking: a subscriber whose buffer is full misses the update and
// catches up on the next one.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan PollUpdate]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan PollUpdate]struct{})}
}

// Subscribe registers a listener for pollID. The returned cancel func must be
// called when the client disconnects.
func (b *Broker) Subscribe(pollID string) (<-chan PollUpdate, func()) {
	ch := make(chan PollUpdate, subscriberBuffer)

	b.mu.Lock()
	if b.subs[pollID] == nil {
		b.subs[pollID] = make(map[chan PollUpdate]struct{})
	}
	b.subs[pollID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[pollID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(b.subs, pollID)
			}
		}
		b.mu.Unlock()
	}

	return ch, cancel
}

func (b *Broker) Publish(pollID string, update PollUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[pollID] {
		select {
		case ch <- update:
		default:
		}
	}
}

func (b *Broker) Subscribers(pollID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[pollID])
}
