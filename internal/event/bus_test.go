package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"editwatch/internal/metrics"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus[Observation](context.Background(), BusOptions{Name: "observations"})
	defer bus.Close()

	first, cancelFirst := bus.Subscribe()
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe()
	defer cancelSecond()

	bus.Publish(Observation{Path: "a.txt", Source: SourceUser})

	for _, ch := range []<-chan Observation{first, second} {
		select {
		case observation := <-ch:
			if observation.Path != "a.txt" {
				t.Fatalf("expected path a.txt, got %q", observation.Path)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for observation")
		}
	}
}

func TestBusFilteredSubscription(t *testing.T) {
	bus := NewBus[Observation](context.Background(), BusOptions{})
	defer bus.Close()

	deletes, cancel := bus.SubscribeFiltered(func(observation Observation) bool {
		return observation.NewContent == ""
	})
	defer cancel()

	bus.Publish(Observation{Path: "kept.txt", NewContent: "body"})
	bus.Publish(Observation{Path: "gone.txt", NewContent: ""})

	select {
	case observation := <-deletes:
		if observation.Path != "gone.txt" {
			t.Fatalf("expected gone.txt, got %q", observation.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for filtered observation")
	}

	select {
	case observation := <-deletes:
		t.Fatalf("unexpected second delivery: %+v", observation)
	default:
	}
}

func TestBusCountsDropsForFullSubscriber(t *testing.T) {
	registry := &metrics.Registry{}
	bus := NewBus[int](context.Background(), BusOptions{
		SubscriberBufferSize: 1,
		Registry:             registry,
	})
	defer bus.Close()

	_, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(1)
	bus.Publish(2)

	if dropped := registry.Snapshot().BusDropped; dropped != 1 {
		t.Fatalf("expected 1 drop, got %d", dropped)
	}
}

func TestBusCloseClosesSubscriberChannels(t *testing.T) {
	bus := NewBus[int](context.Background(), BusOptions{})
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	bus.Publish(7)
}

func TestBusClosesWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := NewBus[int](ctx, BusOptions{})
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel after context cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for context close")
	}
}

func TestBusMaxSubscribers(t *testing.T) {
	bus := NewBus[int](context.Background(), BusOptions{MaxSubscribers: 1})
	defer bus.Close()

	_, cancelFirst := bus.Subscribe()
	defer cancelFirst()

	ch, cancelSecond := bus.Subscribe()
	defer cancelSecond()

	if _, ok := <-ch; ok {
		t.Fatal("expected rejected subscription to be closed")
	}
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	if err := sink.Append(context.Background(), Observation{Path: "a.txt"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	sink.SetError(errors.New("full"))
	if err := sink.Append(context.Background(), Observation{Path: "b.txt"}); err == nil {
		t.Fatal("expected configured error")
	}

	observations := sink.Observations()
	if len(observations) != 2 {
		t.Fatalf("expected 2 observations recorded, got %d", len(observations))
	}
	if observations[0].Path != "a.txt" {
		t.Fatalf("unexpected order: %+v", observations)
	}
}
