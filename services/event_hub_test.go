package services

import (
	"testing"
	"time"
)

func TestMemoryHubRoutesByTopo(t *testing.T) {
	hub := NewMemoryHub()
	first, cancelFirst := hub.Subscribe(1)
	second, cancelSecond := hub.Subscribe(2)
	defer cancelSecond()

	if err := hub.Publish(t.Context(), TopoEvent{TopoID: 1, Action: "create", LineLabel: 3}); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-first:
		if ev.LineLabel != 3 {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber of topo 1 got nothing")
	}
	select {
	case ev := <-second:
		t.Errorf("subscriber of topo 2 got %+v", ev)
	default:
	}

	cancelFirst()
	cancelFirst()
	if _, ok := <-first; ok {
		t.Error("channel still open after cancel")
	}
	if n := hub.Subscribers(1); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
}

func TestMemoryHubDropsWhenSubscriberIsSlow(t *testing.T) {
	hub := NewMemoryHub()
	ch, cancel := hub.Subscribe(7)
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish(t.Context(), TopoEvent{TopoID: 7, LineLabel: i})
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered = %d, want %d", len(ch), subscriberBuffer)
	}
}

func TestTopoChannelRoundTrip(t *testing.T) {
	if got := topoChannel(15); got != "cragtopo:topo:15" {
		t.Errorf("topoChannel = %q", got)
	}
	if got := topoIDFromChannel(topoChannel(15)); got != 15 {
		t.Errorf("topoIDFromChannel = %d", got)
	}
	if got := topoIDFromChannel("cragtopo:topo:abc"); got != 0 {
		t.Errorf("bad channel id = %d, want 0", got)
	}
}
