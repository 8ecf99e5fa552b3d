// Package playback keeps a live media clock obedient to the timeline:
// skipping cut material, pausing at the end of the edit, and mirroring a
// secondary preview clock.
package playback

import (
	"sync"
	"time"
)

// Clock is the media player control surface: a readable/settable position,
// a known duration, and a play/pause flag.
type Clock interface {
	CurrentTime() float64
	SetCurrentTime(t float64)
	Duration() float64
	Play()
	Pause()
	Playing() bool
}

// SystemClock is a wall-clock driven Clock. While playing, the position
// advances with real time, clamped to the duration. It stands in for a media
// element when the agent owns playback itself.
type SystemClock struct {
	mu       sync.Mutex
	duration float64
	position float64
	playing  bool
	anchor   time.Time
	now      func() time.Time
}

func NewSystemClock(duration float64) *SystemClock {
	return &SystemClock{duration: duration, now: time.Now}
}

func (c *SystemClock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *SystemClock) positionLocked() float64 {
	pos := c.position
	if c.playing {
		pos += c.now().Sub(c.anchor).Seconds()
	}
	if pos > c.duration {
		pos = c.duration
	}
	return pos
}

func (c *SystemClock) SetCurrentTime(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t < 0 {
		t = 0
	}
	if t > c.duration {
		t = c.duration
	}
	c.position = t
	c.anchor = c.now()
}

func (c *SystemClock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *SystemClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.playing = true
	c.anchor = c.now()
}

func (c *SystemClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	c.position = c.positionLocked()
	c.playing = false
}

func (c *SystemClock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}
