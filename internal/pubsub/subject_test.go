package pubsub

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestSubscribeReplaysLatest(t *testing.T) {
	s := NewSubject("initial")
	s.Publish("first")
	s.Publish("second")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Subscribe(ctx)
	if got := receive(t, ch); got != "second" {
		t.Fatalf("expected replay of latest value 'second', got %q", got)
	}
}

func TestPublishFansOut(t *testing.T) {
	s := NewSubject(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := s.Subscribe(ctx)
	b := s.Subscribe(ctx)
	receive(t, a)
	receive(t, b)

	s.Publish(42)

	if got := receive(t, a); got != 42 {
		t.Errorf("subscriber a: expected 42, got %d", got)
	}
	if got := receive(t, b); got != 42 {
		t.Errorf("subscriber b: expected 42, got %d", got)
	}
}

func TestSlowSubscriberSeesLatestOnly(t *testing.T) {
	s := NewSubject(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Subscribe(ctx)
	for i := 1; i <= 10; i++ {
		s.Publish(i)
	}

	if got := receive(t, ch); got != 10 {
		t.Fatalf("expected coalesced value 10, got %d", got)
	}
	select {
	case v := <-ch:
		t.Fatalf("expected no further values, got %d", v)
	default:
	}
}

func TestCancelClosesSubscription(t *testing.T) {
	s := NewSubject(0)
	ctx, cancel := context.WithCancel(context.Background())

	ch := s.Subscribe(ctx)
	receive(t, ch)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// A publish may race the cancel; the next read must be the close.
			if _, ok := <-ch; ok {
				t.Fatal("expected channel to be closed")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed after cancel")
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 0 subscribers, got %d", s.Subscribers())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	s := NewSubject("x")
	ch := s.Subscribe(context.Background())
	receive(t, ch)

	s.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after Close")
	}

	s.Publish("ignored")
	if got := s.Value(); got != "x" {
		t.Errorf("expected value unchanged after close, got %q", got)
	}

	late := s.Subscribe(context.Background())
	if _, ok := <-late; ok {
		t.Fatal("expected subscription on closed subject to be closed")
	}
}

func TestConcurrentPublish(t *testing.T) {
	s := NewSubject(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Subscribe(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			s.Publish(v)
		}(i)
	}
	wg.Wait()

	want := s.Value()
	var got int
	for {
		select {
		case got = <-ch:
			continue
		default:
		}
		break
	}
	if got != want {
		t.Fatalf("expected last delivered value %d to equal latest %d", got, want)
	}
}

func TestCloseReleasesUncancelledSubscribers(t *testing.T) {
	before := runtime.NumGoroutine()

	subjects := make([]*Subject[int], 100)
	for i := range subjects {
		subjects[i] = NewSubject(i)
		for j := 0; j < 10; j++ {
			subjects[i].Subscribe(context.Background())
		}
	}
	for _, s := range subjects {
		s.Close()
		s.Close()
	}

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before+10 {
		if time.Now().After(deadline) {
			t.Fatalf("watchers not released after Close: before=%d after=%d", before, runtime.NumGoroutine())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
