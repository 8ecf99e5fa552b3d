// Package timeline holds the authoritative edit model: an ordered list of
// time segments toggled active ("kept") or inactive ("cut") that always
// covers the full media duration with no gaps or overlaps.
package timeline

import (
	"sort"

	"github.com/google/uuid"
)

type Segment struct {
	ID          string  `json:"id"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Description string  `json:"description"`
	Active      bool    `json:"active"`
}

// Interval is a half-open [Start, End) slice of the source media.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (iv Interval) Contains(t float64) bool {
	return t >= iv.Start && t < iv.End
}

func (s Segment) Contains(t float64) bool {
	return t >= s.Start && t < s.End
}

func NewID() string {
	return uuid.NewString()
}

func sortByStart(segments []Segment) {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
}
