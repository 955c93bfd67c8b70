// Package loop drives per-frame work: frame callbacks run every tick and a redraw
// happens when something invalidated the current frame or the loop is continuous.
package loop

import (
	"context"
	"sync"
	"time"
)

// FrameFunc runs once per tick. dt is the time since the previous tick (zero on the first).
type FrameFunc func(dt time.Duration)

// Loop is safe for concurrent use; ticks are serialized, so each one runs to completion
// before the next starts.
type Loop struct {
	mu     sync.Mutex
	tick   sync.Mutex
	frames []FrameFunc
	draw   func()
	dirty  bool
	cont   bool
	last   time.Time
	drawn  uint64
	ticks  uint64
}

// New returns a loop that calls draw to produce a frame. The first tick always draws.
func New(draw func()) *Loop {
	return &Loop{draw: draw, dirty: true}
}

// OnFrame registers fn to run on every tick, before the draw.
func (l *Loop) OnFrame(fn FrameFunc) {
	l.mu.Lock()
	l.frames = append(l.frames, fn)
	l.mu.Unlock()
}

// Invalidate marks the current frame stale. Controls register it as their change observer.
func (l *Loop) Invalidate() {
	l.mu.Lock()
	l.dirty = true
	l.mu.Unlock()
}

// SetContinuous makes every tick draw, as an animated scene needs.
func (l *Loop) SetContinuous(on bool) {
	l.mu.Lock()
	l.cont = on
	l.mu.Unlock()
}

// Continuous reports whether every tick draws.
func (l *Loop) Continuous() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cont
}

// Tick runs the frame callbacks and draws if needed. It reports whether it drew.
func (l *Loop) Tick(now time.Time) bool {
	l.tick.Lock()
	defer l.tick.Unlock()

	l.mu.Lock()
	var dt time.Duration
	if !l.last.IsZero() {
		dt = now.Sub(l.last)
	}
	l.last = now
	l.ticks++
	frames := append([]FrameFunc(nil), l.frames...)
	l.mu.Unlock()

	for _, fn := range frames {
		fn(dt)
	}

	l.mu.Lock()
	draw := l.dirty || l.cont
	l.dirty = false
	l.mu.Unlock()

	if draw && l.draw != nil {
		l.draw()
		l.mu.Lock()
		l.drawn++
		l.mu.Unlock()
	}
	return draw
}

// Stats returns the number of ticks and draws so far.
func (l *Loop) Stats() (ticks, drawn uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks, l.drawn
}

// Run ticks every interval until ctx is cancelled.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.Tick(time.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.Tick(now)
		}
	}
}
