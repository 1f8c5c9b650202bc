package bridge

import (
	"sync"
	"time"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
)

// Event describes one observable change of a bridge transfer. Events are
// published whenever a transfer's durable status or in-memory step moves,
// so subscribers (SSE handlers, workers) can react without polling the
// database.
type Event struct {
	TransferID string                  `json:"transfer_id"`
	Status     entities.TransferStatus `json:"status,omitempty"`
	Step       entities.TransferStep   `json:"step"`
	TxHash     string                  `json:"tx_hash,omitempty"`
	Error      string                  `json:"error,omitempty"`
	At         time.Time               `json:"at"`
}

// Notifier fans out transfer events to subscribers. Publishing never
// blocks; a subscriber that falls behind loses events rather than
// stalling the state machine.
type Notifier struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned cancel function must
// be called to release the subscription.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan Event, 16)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if existing, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber that has buffer space.
func (n *Notifier) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
