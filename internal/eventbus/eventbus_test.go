package eventbus

import "testing"

func TestBus_PublishDeliversToAllSubscribers(t *testing.T) {
	b := New()
	var a, c int
	b.Subscribe(func(ev Event) { a++ })
	b.Subscribe(func(ev Event) { c++ })

	b.Publish(Event{Kind: RecordingStarted})

	if a != 1 || c != 1 {
		t.Errorf("expected both subscribers to receive one event, got a=%d c=%d", a, c)
	}
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	var count int
	unsub := b.Subscribe(func(ev Event) { count++ })
	unsub()

	b.Publish(Event{Kind: RecordingStopped})
	if count != 0 {
		t.Errorf("expected no delivery after unsubscribe, got %d", count)
	}
}

func TestBus_SubscriberPanicDoesNotPropagate(t *testing.T) {
	b := New()
	var afterPanicCalled bool
	b.Subscribe(func(ev Event) { panic("boom") })
	b.Subscribe(func(ev Event) { afterPanicCalled = true })

	b.Publish(Event{Kind: RecordingError, Message: "test"})

	if !afterPanicCalled {
		t.Error("expected subsequent subscriber to still run after a panicking one")
	}
}
