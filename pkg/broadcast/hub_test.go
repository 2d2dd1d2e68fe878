package broadcast

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func receive(t *testing.T, sub Subscription) string {
	t.Helper()
	select {
	case msg, ok := <-sub.Messages():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return ""
}

func TestHubFanOutInPublishOrder(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	defer hub.Close()

	a, err := hub.Subscribe(ctx, "notifications")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	b, err := hub.Subscribe(ctx, "notifications")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := hub.Publish(ctx, "notifications", []byte(fmt.Sprintf("m%d", i))); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	for _, sub := range []Subscription{a, b} {
		for i := 0; i < 5; i++ {
			if got, want := receive(t, sub), fmt.Sprintf("m%d", i); got != want {
				t.Fatalf("message %d = %q, want %q", i, got, want)
			}
		}
	}
}

func TestHubConcurrentPublishersSameOrderForAll(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(WithQueueSize(256))
	defer hub.Close()

	a, _ := hub.Subscribe(ctx, "notifications")
	b, _ := hub.Subscribe(ctx, "notifications")

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = hub.Publish(ctx, "notifications", []byte(fmt.Sprintf("p%d-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()

	for i := 0; i < 100; i++ {
		if x, y := receive(t, a), receive(t, b); x != y {
			t.Fatalf("position %d: subscriber a got %q, b got %q", i, x, y)
		}
	}
}

func TestHubIsolatesChannels(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	defer hub.Close()

	sub, _ := hub.Subscribe(ctx, "notifications")
	_ = hub.Publish(ctx, "other", []byte("nope"))
	_ = hub.Publish(ctx, "notifications", []byte("yes"))

	if got := receive(t, sub); got != "yes" {
		t.Fatalf("got %q, want yes", got)
	}
}

func TestHubPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	ctx := context.Background()
	dropped := 0
	hub := NewHub(WithQueueSize(1), WithDropHook(func(string) { dropped++ }))
	defer hub.Close()

	slow, _ := hub.Subscribe(ctx, "notifications")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = hub.Publish(ctx, "notifications", []byte("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	if dropped != 9 {
		t.Fatalf("dropped = %d, want 9", dropped)
	}
	if got := receive(t, slow); got != "x" {
		t.Fatalf("got %q, want x", got)
	}
}

func TestHubCloseSubscriptionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	defer hub.Close()

	sub, _ := hub.Subscribe(ctx, "notifications")
	if n := hub.Subscribers("notifications"); n != 1 {
		t.Fatalf("Subscribers = %d, want 1", n)
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if n := hub.Subscribers("notifications"); n != 0 {
		t.Fatalf("Subscribers after close = %d, want 0", n)
	}

	_ = hub.Publish(ctx, "notifications", []byte("late"))
	if _, ok := <-sub.Messages(); ok {
		t.Fatal("closed subscription should not deliver")
	}
}

func TestHubClosedRejectsUse(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	sub, _ := hub.Subscribe(ctx, "notifications")

	if err := hub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-sub.Messages(); ok {
		t.Fatal("subscription should be closed with the hub")
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("subscription Close after hub Close: %v", err)
	}
	if err := hub.Publish(ctx, "notifications", nil); err != ErrClosed {
		t.Fatalf("Publish after Close = %v, want ErrClosed", err)
	}
	if _, err := hub.Subscribe(ctx, "notifications"); err != ErrClosed {
		t.Fatalf("Subscribe after Close = %v, want ErrClosed", err)
	}
}
