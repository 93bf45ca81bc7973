package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

type handlerFunc func(ctx context.Context, event Event) error

func (f handlerFunc) Handle(ctx context.Context, event Event) error { return f(ctx, event) }

func TestPublishSyncRunsAllHandlersAndReturnsFirstError(t *testing.T) {
	bus := NewInMemoryBus(nil)

	calls := 0
	bus.Subscribe("lead.revealed", handlerFunc(func(context.Context, Event) error {
		calls++
		return errors.New("first")
	}))
	bus.Subscribe("lead.revealed", handlerFunc(func(context.Context, Event) error {
		calls++
		return errors.New("second")
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "lead.revealed"})
	if err == nil || err.Error() != "first" {
		t.Fatalf("expected first handler error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d calls", calls)
	}
}

func TestPublishDispatchesOnlyMatchingEventName(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var mu sync.Mutex
	got := make([]string, 0)
	done := make(chan struct{}, 1)

	bus.Subscribe("lead.assigned", handlerFunc(func(_ context.Context, e Event) error {
		mu.Lock()
		got = append(got, e.EventName())
		mu.Unlock()
		done <- struct{}{}
		return nil
	}))

	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "lead.matched"})
	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "lead.assigned"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "lead.assigned" {
		t.Fatalf("expected only lead.assigned, got %v", got)
	}
}
