package event

import (
	stderrors "errors"
	"sync"
	"testing"
)

func TestBus_OnEmit(t *testing.T) {
	bus := NewBus()
	var got []Event
	bus.On("a", func(ev Event) { got = append(got, ev) })

	if err := bus.Emit("a", New("x", "k", 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bus.Emit("b", New("y")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Type != "x" {
		t.Errorf("expected one 'x' event, got %v", got)
	}
}

func TestBus_SubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	for i := range 3 {
		bus.On("a", func(Event) { order = append(order, i) })
	}
	_ = bus.Emit("a", New("x"))
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("expected [0 1 2], got %v", order)
	}
}

func TestBus_Off(t *testing.T) {
	bus := NewBus()
	calls := 0
	id := bus.On("a", func(Event) { calls++ })
	other := bus.On("a", func(Event) {})

	if !bus.Off("a", id) {
		t.Fatal("expected Off to remove the listener")
	}
	if bus.Off("a", id) {
		t.Error("second Off should report false")
	}
	if bus.Off("b", other) {
		t.Error("Off on a different name should report false")
	}
	_ = bus.Emit("a", New("x"))
	if calls != 0 {
		t.Errorf("removed listener was called %d times", calls)
	}
	if bus.ListenerCount("a") != 1 {
		t.Errorf("expected 1 remaining listener, got %d", bus.ListenerCount("a"))
	}
	bus.Off("a", other)
	if bus.ListenerCount("a") != 0 {
		t.Errorf("expected no listeners, got %d", bus.ListenerCount("a"))
	}
}

func TestBus_ListenerAddedDuringDispatch(t *testing.T) {
	bus := NewBus()
	lateCalls := 0
	bus.On("a", func(Event) {
		bus.On("a", func(Event) { lateCalls++ })
	})

	_ = bus.Emit("a", New("first"))
	if lateCalls != 0 {
		t.Errorf("listener added during dispatch saw the current event")
	}
	_ = bus.Emit("a", New("second"))
	if lateCalls != 1 {
		t.Errorf("expected late listener to see the next event once, got %d", lateCalls)
	}
}

func TestBus_ListenerRemovedDuringDispatch(t *testing.T) {
	bus := NewBus()
	calls := 0
	var second ListenerID
	bus.On("a", func(Event) { bus.Off("a", second) })
	second = bus.On("a", func(Event) { calls++ })

	_ = bus.Emit("a", New("x"))
	if calls != 1 {
		t.Errorf("snapshot should still deliver to the removed listener once, got %d", calls)
	}
	_ = bus.Emit("a", New("x"))
	if calls != 1 {
		t.Errorf("removed listener called again, total %d", calls)
	}
}

func TestBus_ReentrantEmit(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.On("a", func(ev Event) {
		got = append(got, ev.Type)
		if ev.Type == "outer" {
			_ = bus.Emit("a", New("inner"))
		}
	})
	_ = bus.Emit("a", New("outer"))
	if len(got) != 2 || got[0] != "outer" || got[1] != "inner" {
		t.Errorf("expected [outer inner], got %v", got)
	}
}

func TestBus_GuardRejects(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.On(Notify, func(Event) { calls++ })
	bus.Guard(Notify, RequireType(Notify))

	err := bus.Emit(Notify, Event{Payload: map[string]any{"size": 1}})
	if err == nil {
		t.Fatal("expected guard error")
	}
	if calls != 0 {
		t.Errorf("listener ran despite guard rejection")
	}
	if err := bus.Emit(Notify, New("ok")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one delivery, got %d", calls)
	}
}

func TestBus_GuardFirstErrorWins(t *testing.T) {
	bus := NewBus()
	errA := stderrors.New("a")
	bus.Guard("x", func(Event) error { return errA })
	bus.Guard("x", func(Event) error { t.Error("second guard should not run"); return nil })
	if err := bus.Emit("x", New("t")); err != errA {
		t.Errorf("expected errA, got %v", err)
	}
}

func TestBus_Unguard(t *testing.T) {
	bus := NewBus()
	id := bus.Guard(Notify, RequireType(Notify))
	other := bus.Guard(Notify, func(Event) error { return nil })
	if n := bus.GuardCount(Notify); n != 2 {
		t.Fatalf("expected 2 guards, got %d", n)
	}
	if !bus.Unguard(Notify, id) {
		t.Fatal("expected guard to be removed")
	}
	if bus.Unguard(Notify, id) {
		t.Error("second removal should report false")
	}
	if err := bus.Emit(Notify, Event{}); err != nil {
		t.Errorf("removed guard still ran: %v", err)
	}
	bus.Unguard(Notify, other)
	if n := bus.GuardCount(Notify); n != 0 {
		t.Errorf("expected no guards, got %d", n)
	}
}

func TestBus_ConcurrentUse(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	bus.On("a", func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				id := bus.On("b", func(Event) {})
				_ = bus.Emit("a", New("x"))
				bus.Off("b", id)
			}
		}()
	}
	wg.Wait()
	if count != 800 {
		t.Errorf("expected 800 deliveries, got %d", count)
	}
}

func TestListenerID_String(t *testing.T) {
	bus := NewBus()
	id := bus.On("a", func(Event) {})
	if len(id.String()) != 36 {
		t.Errorf("expected uuid string, got %q", id.String())
	}
}
