package timeline

import (
	"math"
	"sync"
)

// timeEpsilon absorbs float drift when comparing boundary times. Segment
// boundaries closer than this are treated as touching.
const timeEpsilon = 1e-6

// Store is the single owner of the segment sequence. Readers (the playback
// synchronizer, view projections) always observe a complete, valid timeline;
// writers replace or adjust it atomically under the lock.
type Store struct {
	mu       sync.RWMutex
	duration float64
	segments []Segment
}

func NewStore() *Store {
	return &Store{}
}

// Reset installs a fresh timeline for media of the given duration: one
// full-length active segment, the state every project starts from.
func (s *Store) Reset(duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.duration = duration
	if duration <= 0 {
		s.segments = nil
		return
	}
	s.segments = []Segment{{
		ID:          NewID(),
		Start:       0,
		End:         duration,
		Description: "Full Video",
		Active:      true,
	}}
}

func (s *Store) Duration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duration
}

// Segments returns a copy of the current sequence.
func (s *Store) Segments() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// ReplaceAll swaps in a new segment sequence. The input is sorted by start
// and zero-length entries are dropped before validation; on any invariant
// violation the existing timeline is left untouched.
func (s *Store) ReplaceAll(newSegments []Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.duration <= 0 {
		return ErrNoDuration
	}

	candidate := make([]Segment, 0, len(newSegments))
	for _, seg := range newSegments {
		if seg.End-seg.Start <= timeEpsilon {
			continue
		}
		if seg.ID == "" {
			seg.ID = NewID()
		}
		candidate = append(candidate, seg)
	}
	sortByStart(candidate)

	if err := validate(candidate, s.duration); err != nil {
		return err
	}

	s.segments = candidate
	return nil
}

// UpdateOne moves a single segment boundary. The moved endpoint is clamped,
// start and end swap when the endpoint crosses its opposite, and the
// neighbor sharing the moved boundary is resized to meet it exactly, so the
// timeline stays gap-free after every call. Neighbors may shrink to zero
// length transiently; Normalize drops them.
func (s *Store) UpdateOne(id string, newStart, newEnd *float64) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.segments {
		if s.segments[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Segment{}, ErrSegmentNotFound
	}

	seg := s.segments[idx]
	start, end := seg.Start, seg.End
	if newStart != nil {
		start = clamp(*newStart, 0, s.duration)
	}
	if newEnd != nil {
		end = clamp(*newEnd, 0, s.duration)
	}

	// A handle dragged past its opposite boundary swaps the two labels
	// rather than being rejected.
	if start > end {
		start, end = end, start
	}

	// The outermost boundaries are pinned: the first segment always starts
	// at 0 and the last always ends at duration, otherwise coverage breaks
	// with no neighbor to absorb the gap.
	if idx == 0 {
		start = 0
	} else {
		start = math.Max(start, s.segments[idx-1].Start)
	}
	if idx == len(s.segments)-1 {
		end = s.duration
	} else {
		end = math.Min(end, s.segments[idx+1].End)
	}
	if start > end {
		start, end = end, start
	}

	s.segments[idx].Start = start
	s.segments[idx].End = end
	if idx > 0 {
		s.segments[idx-1].End = start
	}
	if idx < len(s.segments)-1 {
		s.segments[idx+1].Start = end
	}

	return s.segments[idx], nil
}

// Normalize drops segments that collapsed to zero length during a drag.
// Calling it on an already-normalized timeline is a no-op.
func (s *Store) Normalize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.segments[:0]
	for _, seg := range s.segments {
		if seg.End-seg.Start > timeEpsilon {
			kept = append(kept, seg)
		}
	}
	s.segments = kept
}

// Query returns the segment whose interval contains t. Non-overlap makes the
// result unique.
func (s *Store) Query(t float64) (Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t < 0 || t >= s.duration {
		return Segment{}, ErrOutOfRange
	}
	for _, seg := range s.segments {
		if seg.Contains(t) {
			return seg, nil
		}
	}
	return Segment{}, ErrSegmentNotFound
}

// ActiveIntervals projects the kept portions of the timeline, in order.
func (s *Store) ActiveIntervals() []Interval {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Interval
	for _, seg := range s.segments {
		if seg.Active {
			out = append(out, Interval{Start: seg.Start, End: seg.End})
		}
	}
	return out
}

// ActiveAt reports whether t falls inside an active segment.
func (s *Store) ActiveAt(t float64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, seg := range s.segments {
		if seg.Active && seg.Contains(t) {
			return true
		}
	}
	return false
}

// NextActiveStart returns the start of the nearest active segment beginning
// after t, or false when no active material remains.
func (s *Store) NextActiveStart(t float64) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, seg := range s.segments {
		if seg.Active && seg.Start > t {
			return seg.Start, true
		}
	}
	return 0, false
}

func validate(segments []Segment, duration float64) *ValidationError {
	if len(segments) == 0 {
		return invalid(InvariantCoverage, "no segments for duration %.3f", duration)
	}

	seen := make(map[string]bool, len(segments))
	for i, seg := range segments {
		if seen[seg.ID] {
			return invalid(InvariantSchema, "duplicate segment id %q", seg.ID)
		}
		seen[seg.ID] = true

		if seg.Start < -timeEpsilon || seg.End > duration+timeEpsilon || seg.Start > seg.End {
			return invalid(InvariantBounds, "segment %d spans [%.3f, %.3f] outside [0, %.3f]",
				i, seg.Start, seg.End, duration)
		}
	}

	if math.Abs(segments[0].Start) > timeEpsilon {
		return invalid(InvariantCoverage, "timeline starts at %.3f, not 0", segments[0].Start)
	}
	if math.Abs(segments[len(segments)-1].End-duration) > timeEpsilon {
		return invalid(InvariantCoverage, "timeline ends at %.3f, not %.3f",
			segments[len(segments)-1].End, duration)
	}

	for i := 1; i < len(segments); i++ {
		prev, cur := segments[i-1], segments[i]
		if cur.Start-prev.End > timeEpsilon {
			return invalid(InvariantCoverage, "gap between %.3f and %.3f", prev.End, cur.Start)
		}
		if prev.End-cur.Start > timeEpsilon {
			return invalid(InvariantOverlap, "segments overlap between %.3f and %.3f", cur.Start, prev.End)
		}
		if cur.End < prev.End-timeEpsilon {
			return invalid(InvariantOrdering, "segment %d ends at %.3f before its predecessor's %.3f",
				i, cur.End, prev.End)
		}
	}

	return nil
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
