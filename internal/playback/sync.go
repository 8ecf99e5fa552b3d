package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chatcut/chatcut-agent/internal/timeline"
)

const (
	// DefaultTickInterval bounds redirection latency: a timeline change is
	// picked up within one tick.
	DefaultTickInterval = 50 * time.Millisecond

	// DriftTolerance is the largest primary/secondary divergence left
	// uncorrected, to avoid reseeking the mirror every tick.
	DriftTolerance = 0.1
)

type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
	StateSeeking State = "seeking"
)

// Status is the externally visible playback state.
type Status struct {
	CurrentTime float64 `json:"current_time"`
	Playing     bool    `json:"playing"`
	State       State   `json:"state"`
}

// Synchronizer enforces the active/inactive policy on a primary clock and
// mirrors it onto an optional secondary preview clock. The tick only runs
// while playing; stopping cancels it entirely.
type Synchronizer struct {
	store     *timeline.Store
	primary   Clock
	secondary Clock
	logger    *slog.Logger
	interval  time.Duration

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

func NewSynchronizer(store *timeline.Store, primary, secondary Clock, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		store:     store,
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		interval:  DefaultTickInterval,
		state:     StateStopped,
	}
}

// SetTickInterval overrides the tick period. Only useful before Play.
func (s *Synchronizer) SetTickInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.interval = d
	}
}

// Play starts the primary clock and the enforcement tick. The tick stops when
// ctx is cancelled, Pause is called, or the playhead runs out of active
// material.
func (s *Synchronizer) Play(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePlaying {
		return
	}

	s.primary.Play()
	s.state = StatePlaying

	tickCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.run(tickCtx)
}

func (s *Synchronizer) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
			s.mu.Lock()
			stopped := s.state == StateStopped
			s.mu.Unlock()
			if stopped {
				return
			}
		}
	}
}

// Pause halts playback and the tick.
func (s *Synchronizer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Synchronizer) stopLocked() {
	s.primary.Pause()
	if s.secondary != nil && s.secondary.Playing() {
		s.secondary.Pause()
	}
	s.state = StateStopped
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// HandleSeek clamps t, moves the primary clock, and immediately re-runs the
// redirect rules once, so seeking into cut material snaps forward.
func (s *Synchronizer) HandleSeek(t float64) {
	s.mu.Lock()
	prev := s.state
	s.state = StateSeeking
	s.mu.Unlock()

	duration := s.store.Duration()
	t = clamp(t, 0, duration)
	s.primary.SetCurrentTime(t)

	s.mu.Lock()
	// A Pause or Play that landed while the clock call was in flight owns
	// the state now; restore only an uninterrupted seek.
	if s.state == StateSeeking {
		s.state = prev
	}
	s.mu.Unlock()

	s.Tick()
}

// Tick applies the enforcement rules once against the current timeline
// snapshot. Bounded, constant-time work per call.
func (s *Synchronizer) Tick() {
	t := s.primary.CurrentTime()
	s.mirror(t)

	duration := s.store.Duration()
	if duration <= 0 {
		return
	}

	if s.store.ActiveAt(t) {
		return
	}

	if next, ok := s.store.NextActiveStart(t); ok {
		// Programmatic redirect past cut material, not a user seek.
		s.primary.SetCurrentTime(next)
		s.mirror(next)
		return
	}

	// No active material ahead: end of timeline.
	if s.primary.Playing() {
		if s.logger != nil {
			s.logger.Debug("end of timeline reached", "time", t)
		}
	}
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
	s.primary.SetCurrentTime(duration)
}

func (s *Synchronizer) mirror(t float64) {
	if s.secondary == nil {
		return
	}
	if diff := s.secondary.CurrentTime() - t; diff > DriftTolerance || diff < -DriftTolerance {
		s.secondary.SetCurrentTime(t)
	}
	if s.primary.Playing() && !s.secondary.Playing() {
		s.secondary.Play()
	}
	if !s.primary.Playing() && s.secondary.Playing() {
		s.secondary.Pause()
	}
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	return Status{
		CurrentTime: s.primary.CurrentTime(),
		Playing:     s.primary.Playing(),
		State:       state,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
