// Package transcript holds the read-only, time-coded transcript produced by
// the analysis service for the loaded media.
package transcript

import (
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed transcript")

const (
	CategorySpeech  = "speech"
	CategorySilence = "silence"
	CategoryMusic   = "music"
	CategoryNoise   = "noise"
	CategoryIntro   = "intro"
	CategoryOutro   = "outro"
)

var validCategories = map[string]bool{
	CategorySpeech:  true,
	CategorySilence: true,
	CategoryMusic:   true,
	CategoryNoise:   true,
	CategoryIntro:   true,
	CategoryOutro:   true,
}

type Item struct {
	ID       int     `json:"id"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Text     string  `json:"text"`
	Category string  `json:"category"`
	Speaker  string  `json:"speaker,omitempty"`
}

// Index is an immutable chronological sequence of transcript items.
type Index struct {
	items []Item
}

// NewIndex validates and wraps items coming from the analysis service. Items
// must be well-formed and chronological; the remote output is untrusted.
func NewIndex(items []Item) (*Index, error) {
	for i, item := range items {
		if item.End <= item.Start {
			return nil, fmt.Errorf("%w: item %d spans [%.3f, %.3f]", ErrMalformed, i, item.Start, item.End)
		}
		if !validCategories[item.Category] {
			return nil, fmt.Errorf("%w: item %d has unknown category %q", ErrMalformed, i, item.Category)
		}
		if i > 0 && item.Start < items[i-1].Start {
			return nil, fmt.Errorf("%w: item %d starts before its predecessor", ErrMalformed, i)
		}
	}

	copied := make([]Item, len(items))
	copy(copied, items)
	return &Index{items: copied}, nil
}

func (x *Index) Items() []Item {
	out := make([]Item, len(x.items))
	copy(out, x.items)
	return out
}

func (x *Index) Len() int {
	return len(x.items)
}

// End returns the end time of the last item, the transcript's best estimate
// of the media duration before metadata is known.
func (x *Index) End() float64 {
	if len(x.items) == 0 {
		return 0
	}
	return x.items[len(x.items)-1].End
}

// ItemAt returns the item whose interval contains t, if any.
func (x *Index) ItemAt(t float64) (Item, bool) {
	for _, item := range x.items {
		if t >= item.Start && t < item.End {
			return item, true
		}
	}
	return Item{}, false
}

// Within returns the items fully contained in [start, end].
func (x *Index) Within(start, end float64) []Item {
	var out []Item
	for _, item := range x.items {
		if item.Start >= start && item.End <= end {
			out = append(out, item)
		}
	}
	return out
}
