package loop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTickDrawsWhenDirty(t *testing.T) {
	draws := 0
	l := New(func() { draws++ })
	now := time.Unix(0, 0)

	if !l.Tick(now) {
		t.Fatal("first tick should draw")
	}
	if l.Tick(now.Add(time.Second)) {
		t.Fatal("clean tick drew")
	}
	l.Invalidate()
	if !l.Tick(now.Add(2 * time.Second)) {
		t.Fatal("invalidated tick did not draw")
	}
	if draws != 2 {
		t.Fatalf("draws = %d, want 2", draws)
	}
	if ticks, drawn := l.Stats(); ticks != 3 || drawn != 2 {
		t.Fatalf("stats = %d/%d", ticks, drawn)
	}
}

func TestFrameCallbacksBeforeDraw(t *testing.T) {
	var order []string
	var dts []time.Duration
	l := New(func() { order = append(order, "draw") })
	l.OnFrame(func(dt time.Duration) {
		order = append(order, "frame")
		dts = append(dts, dt)
	})
	l.SetContinuous(true)

	start := time.Unix(100, 0)
	l.Tick(start)
	l.Tick(start.Add(16 * time.Millisecond))

	want := []string{"frame", "draw", "frame", "draw"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if dts[0] != 0 || dts[1] != 16*time.Millisecond {
		t.Fatalf("dts = %v", dts)
	}
}

func TestFrameCallbackCanInvalidate(t *testing.T) {
	draws := 0
	l := New(func() { draws++ })
	l.OnFrame(func(time.Duration) { l.Invalidate() })
	for i := 0; i < 3; i++ {
		l.Tick(time.Unix(int64(i), 0))
	}
	if draws != 3 {
		t.Fatalf("draws = %d, want 3", draws)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan struct{}, 100)
	l := New(nil)
	l.OnFrame(func(time.Duration) {
		select {
		case frames <- struct{}{}:
		default:
		}
	})

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, time.Millisecond) }()

	for i := 0; i < 3; i++ {
		select {
		case <-frames:
		case <-time.After(2 * time.Second):
			t.Fatal("loop did not tick")
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
