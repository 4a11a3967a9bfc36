package realtime

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/events"
)

func evt(name string) events.Event {
	return events.Event{Name: name, TenantID: "t1", OccurredAt: time.Now().UTC()}
}

func TestHub_FanOut(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	defer hub.Close()

	a := hub.Subscribe()
	b := hub.Subscribe()

	hub.Publish(evt(events.PaymentApplied))

	for _, sub := range []*Subscriber{a, b} {
		select {
		case got := <-sub.Events():
			if got.Name != events.PaymentApplied {
				t.Errorf("received %s, want %s", got.Name, events.PaymentApplied)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestHub_LateSubscriberGetsNothing(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	defer hub.Close()

	hub.Publish(evt(events.PaymentApplied))
	late := hub.Subscribe()

	select {
	case got := <-late.Events():
		t.Fatalf("late subscriber received %s retroactively", got.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowSubscriberDropped(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	defer hub.Close()

	slow := hub.Subscribe()
	healthy := hub.Subscribe()

	// Fill the slow subscriber's buffer while keeping the healthy one
	// drained, then publish once more; that publish must not block and must
	// drop only the laggard.
	for i := 0; i < subscriberBuffer; i++ {
		hub.Publish(evt(events.SummaryChanged))
		<-healthy.Events()
	}
	hub.Publish(evt(events.PaymentApplied))

	if n := hub.SubscriberCount(); n != 1 {
		t.Errorf("subscriber count = %d, want 1 after dropping slow subscriber", n)
	}

	// The healthy subscriber received the final event.
	select {
	case got := <-healthy.Events():
		if got.Name != events.PaymentApplied {
			t.Errorf("healthy received %s, want %s", got.Name, events.PaymentApplied)
		}
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber stopped receiving after another was dropped")
	}

	// The slow subscriber's channel ends with what was buffered, then closes.
	received := 0
	for range slow.Events() {
		received++
	}
	if received != subscriberBuffer {
		t.Errorf("slow subscriber drained %d events, want %d", received, subscriberBuffer)
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	defer hub.Close()

	sub := hub.Subscribe()
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub) // second call is a no-op

	if _, open := <-sub.Events(); open {
		t.Error("channel still open after unsubscribe")
	}
	if n := hub.SubscriberCount(); n != 0 {
		t.Errorf("subscriber count = %d, want 0", n)
	}

	// Publishing to an empty hub is fine.
	hub.Publish(evt(events.PaymentApplied))
}

func TestHub_KeepAlive(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	hub.keepAliveEvery = 10 * time.Millisecond
	hub.Start()
	defer hub.Close()

	sub := hub.Subscribe()
	select {
	case got := <-sub.Events():
		if got.Name != events.KeepAlive {
			t.Errorf("received %s, want keepalive", got.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("no keep-alive within a second")
	}
}

func TestHub_CloseTerminatesSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sub := hub.Subscribe()
	hub.Close()

	if _, open := <-sub.Events(); open {
		t.Error("channel still open after hub close")
	}

	// Subscribing after close yields an already-closed subscription.
	late := hub.Subscribe()
	if _, open := <-late.Events(); open {
		t.Error("post-close subscription is live")
	}
}
