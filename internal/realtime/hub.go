package realtime

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/events"
)

const subscriberBuffer = 16

// Subscriber is one live listener. Events arrive on Events() until the hub
// drops the subscriber (unsubscribe, hub close, or a fallen-behind buffer).
type Subscriber struct {
	id uint64
	ch chan events.Event
}

func (s *Subscriber) Events() <-chan events.Event {
	return s.ch
}

// Hub fans published events out to its current subscribers. Delivery is
// best-effort and never persisted: whoever subscribes after an event was
// published never sees it. Publish never blocks; a subscriber whose buffer
// is full is dropped on the spot so one stuck dashboard cannot slow the
// payment path or starve the others.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscriber
	nextID uint64
	closed bool

	keepAliveEvery time.Duration
	stop           chan struct{}
	log            zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs:           make(map[uint64]*Subscriber),
		keepAliveEvery: 25 * time.Second,
		stop:           make(chan struct{}),
		log:            log,
	}
}

// Start launches the keep-alive ticker that probes idle subscriptions so
// silently-dropped connections are noticed.
func (h *Hub) Start() {
	go func() {
		ticker := time.NewTicker(h.keepAliveEvery)
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				h.Publish(events.Event{Name: events.KeepAlive, OccurredAt: time.Now().UTC()})
			}
		}
	}()
}

func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscriber{id: h.nextID, ch: make(chan events.Event, subscriberBuffer)}
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; ok {
		delete(h.subs, sub.id)
		close(sub.ch)
	}
}

// Publish delivers to every current subscriber without blocking. Failure to
// reach one subscriber affects neither the others nor the caller.
func (h *Hub) Publish(evt events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	for id, sub := range h.subs {
		select {
		case sub.ch <- evt:
		default:
			// Buffer full: the connection is dead or hopelessly behind.
			delete(h.subs, id)
			close(sub.ch)
			h.log.Debug().Uint64("subscriber", id).Msg("dropped slow subscriber")
		}
	}
}

// SubscriberCount reports the current fan-out set size.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.stop)
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}
