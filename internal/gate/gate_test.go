package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGate_SignalOnce(t *testing.T) {
	g := New()

	if g.Count() != 1 {
		t.Fatalf("expected count 1, got %d", g.Count())
	}

	if !g.Signal() {
		t.Error("first Signal should open the gate")
	}
	if g.Count() != 0 {
		t.Errorf("expected count 0 after Signal, got %d", g.Count())
	}

	// Повторный Signal не уводит счётчик ниже нуля
	if g.Signal() {
		t.Error("second Signal should be a no-op")
	}
	if g.Count() != 0 {
		t.Errorf("expected count 0 after second Signal, got %d", g.Count())
	}
}

func TestGate_ConcurrentSignal(t *testing.T) {
	g := New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	opened := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Signal() {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if opened != 1 {
		t.Errorf("expected exactly one opener, got %d", opened)
	}
}

func TestGate_WaitReturnsEarly(t *testing.T) {
	g := New()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Signal()
	}()

	start := time.Now()
	done, err := g.Wait(context.Background(), 5*time.Second)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done {
		t.Error("expected gate to open")
	}
	if elapsed > time.Second {
		t.Errorf("Wait should return as soon as the gate opens, took %v", elapsed)
	}
}

func TestGate_WaitTimeout(t *testing.T) {
	g := New()

	start := time.Now()
	done, err := g.Wait(context.Background(), 50*time.Millisecond)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("timeout should not be an error: %v", err)
	}
	if done {
		t.Error("expected false on timeout")
	}
	if elapsed < 40*time.Millisecond {
		t.Errorf("Wait returned before timeout: %v", elapsed)
	}
	if g.Count() != 1 {
		t.Error("timeout should not change the count")
	}
}

func TestGate_WaitAlreadyOpen(t *testing.T) {
	g := New()
	g.Signal()

	done, err := g.Wait(context.Background(), 0)
	if err != nil || !done {
		t.Errorf("expected open gate to return true immediately, got %v, %v", done, err)
	}
}

func TestGate_WaitContextCancel(t *testing.T) {
	g := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done, err := g.Wait(ctx, time.Minute)
	if done {
		t.Error("expected false on cancel")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
