package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chatcut/chatcut-agent/internal/timeline"
)

type fakeClock struct {
	mu       sync.Mutex
	time     float64
	duration float64
	playing  bool
	seeks    []float64
}

func (c *fakeClock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.time
}

func (c *fakeClock) SetCurrentTime(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.time = t
	c.seeks = append(c.seeks, t)
}

func (c *fakeClock) setTime(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.time = t
}

func (c *fakeClock) seekCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seeks)
}

func (c *fakeClock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *fakeClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = true
}

func (c *fakeClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
}

func (c *fakeClock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func syncTestStore(t *testing.T) *timeline.Store {
	t.Helper()
	s := timeline.NewStore()
	s.Reset(12)
	err := s.ReplaceAll([]timeline.Segment{
		{ID: "a", Start: 0, End: 5, Active: true},
		{ID: "b", Start: 5, End: 8, Active: false},
		{ID: "c", Start: 8, End: 12, Active: true},
	})
	if err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	return s
}

func TestTick_RedirectsPastCutMaterial(t *testing.T) {
	store := syncTestStore(t)
	primary := &fakeClock{time: 6, duration: 12, playing: true}
	syncer := NewSynchronizer(store, primary, nil, nil)

	syncer.Tick()

	if got := primary.CurrentTime(); got != 8 {
		t.Errorf("clock = %v after tick, want 8", got)
	}
	if !primary.Playing() {
		t.Error("clock should keep playing through a redirect")
	}
}

func TestTick_NoRedirectInsideActiveSegment(t *testing.T) {
	store := syncTestStore(t)
	primary := &fakeClock{time: 3, duration: 12, playing: true}
	syncer := NewSynchronizer(store, primary, nil, nil)

	syncer.Tick()

	if primary.seekCount() != 0 {
		t.Errorf("clock was redirected to %v inside an active segment", primary.seeks)
	}
}

func TestTick_EndOfTimeline(t *testing.T) {
	store := syncTestStore(t)
	primary := &fakeClock{time: 12, duration: 12, playing: true}
	syncer := NewSynchronizer(store, primary, nil, nil)

	syncer.Tick()

	if primary.Playing() {
		t.Error("clock should pause at end of timeline")
	}
	if got := primary.CurrentTime(); got != 12 {
		t.Errorf("clock = %v, want duration 12", got)
	}
	if syncer.State() != StateStopped {
		t.Errorf("state = %v, want stopped", syncer.State())
	}
}

func TestTick_MirrorsSecondary(t *testing.T) {
	store := syncTestStore(t)
	primary := &fakeClock{time: 3, duration: 12, playing: true}
	secondary := &fakeClock{time: 3.5, duration: 12}
	syncer := NewSynchronizer(store, primary, secondary, nil)

	syncer.Tick()

	if got := secondary.CurrentTime(); got != 3 {
		t.Errorf("secondary = %v, want mirrored to 3", got)
	}
	if !secondary.Playing() {
		t.Error("secondary play flag should follow the primary")
	}
}

func TestTick_SecondaryDriftWithinTolerance(t *testing.T) {
	store := syncTestStore(t)
	primary := &fakeClock{time: 3, duration: 12}
	secondary := &fakeClock{time: 3.05, duration: 12}
	syncer := NewSynchronizer(store, primary, secondary, nil)

	syncer.Tick()

	if secondary.seekCount() != 0 {
		t.Errorf("secondary reseeked to %v within drift tolerance", secondary.seeks)
	}
}

func TestHandleSeek_SnapsForwardOutOfCut(t *testing.T) {
	store := syncTestStore(t)
	primary := &fakeClock{time: 0, duration: 12, playing: true}
	syncer := NewSynchronizer(store, primary, nil, nil)

	syncer.HandleSeek(6)

	if got := primary.CurrentTime(); got != 8 {
		t.Errorf("clock = %v after seek into cut, want snapped to 8", got)
	}
}

func TestHandleSeek_Clamps(t *testing.T) {
	store := syncTestStore(t)
	primary := &fakeClock{time: 3, duration: 12}
	syncer := NewSynchronizer(store, primary, nil, nil)

	syncer.HandleSeek(-5)
	if primary.seeks[0] != 0 {
		t.Errorf("seek(-5) landed at %v, want clamped to 0", primary.seeks[0])
	}
}

// gateClock stalls SetCurrentTime so a test can interleave other calls while
// a seek is mid-flight.
type gateClock struct {
	fakeClock
	entered chan struct{}
	release chan struct{}
}

func (c *gateClock) SetCurrentTime(t float64) {
	c.entered <- struct{}{}
	<-c.release
	c.fakeClock.SetCurrentTime(t)
}

func TestHandleSeek_PauseDuringSeekWins(t *testing.T) {
	store := syncTestStore(t)
	primary := &gateClock{
		fakeClock: fakeClock{time: 3, duration: 12},
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	syncer := NewSynchronizer(store, primary, nil, nil)
	syncer.SetTickInterval(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syncer.Play(ctx)

	done := make(chan struct{})
	go func() {
		syncer.HandleSeek(4)
		close(done)
	}()

	// The seek is now stalled inside the clock call; pause underneath it.
	<-primary.entered
	syncer.Pause()
	close(primary.release)
	<-done

	if syncer.State() != StateStopped {
		t.Fatalf("state = %v after pause during seek, want stopped", syncer.State())
	}
	if primary.Playing() {
		t.Error("primary clock should stay paused")
	}

	// The machine must not be wedged: playback resumes normally.
	syncer.Play(ctx)
	if syncer.State() != StatePlaying {
		t.Errorf("state = %v after resume, want playing", syncer.State())
	}
	if !primary.Playing() {
		t.Error("primary clock should be playing after resume")
	}
}

func TestPlay_TickLoopStopsOnPause(t *testing.T) {
	store := syncTestStore(t)
	primary := &fakeClock{time: 3, duration: 12}
	syncer := NewSynchronizer(store, primary, nil, nil)
	syncer.SetTickInterval(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncer.Play(ctx)
	if syncer.State() != StatePlaying {
		t.Fatalf("state = %v after Play, want playing", syncer.State())
	}
	if !primary.Playing() {
		t.Fatal("primary clock should be playing")
	}

	syncer.Pause()
	if syncer.State() != StateStopped {
		t.Errorf("state = %v after Pause, want stopped", syncer.State())
	}
	if primary.Playing() {
		t.Error("primary clock should be paused")
	}
}

func TestPlay_RunsToEndOfTimeline(t *testing.T) {
	store := syncTestStore(t)
	// Start inside the final active segment, nearly at the end.
	primary := &fakeClock{time: 11.999, duration: 12}
	syncer := NewSynchronizer(store, primary, nil, nil)
	syncer.SetTickInterval(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncer.Play(ctx)

	// The fake clock does not advance on its own; push it past the end the
	// way a media element would and wait for the tick to notice.
	primary.setTime(12)

	deadline := time.After(time.Second)
	for syncer.State() != StateStopped {
		select {
		case <-deadline:
			t.Fatal("synchronizer never stopped at end of timeline")
		case <-time.After(time.Millisecond):
		}
	}

	if got := primary.CurrentTime(); got != 12 {
		t.Errorf("clock = %v, want 12", got)
	}
}

func TestSystemClock_AdvancesWhilePlaying(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewSystemClock(10)
	c.now = func() time.Time { return now }

	c.Play()
	now = now.Add(3 * time.Second)
	if got := c.CurrentTime(); got != 3 {
		t.Errorf("CurrentTime() = %v, want 3", got)
	}

	c.Pause()
	now = now.Add(5 * time.Second)
	if got := c.CurrentTime(); got != 3 {
		t.Errorf("CurrentTime() = %v while paused, want 3", got)
	}

	// Clamped at duration.
	c.Play()
	now = now.Add(time.Minute)
	if got := c.CurrentTime(); got != 10 {
		t.Errorf("CurrentTime() = %v, want clamped to 10", got)
	}
}

func TestSystemClock_SetCurrentTimeClamps(t *testing.T) {
	c := NewSystemClock(10)
	c.SetCurrentTime(-1)
	if got := c.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime() = %v, want 0", got)
	}
	c.SetCurrentTime(99)
	if got := c.CurrentTime(); got != 10 {
		t.Errorf("CurrentTime() = %v, want 10", got)
	}
}
