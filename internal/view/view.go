// Package view projects timeline and transcript state into the two display
// modes. Projections are pure and recomputed per call; nothing here caches
// or mutates.
package view

import (
	"github.com/chatcut/chatcut-agent/internal/timeline"
	"github.com/chatcut/chatcut-agent/internal/transcript"
)

// CardGapThreshold is the silence between consecutive surviving items that
// starts a new card.
const CardGapThreshold = 2.0

// Line is one transcript item in continuous mode. Active marks the item the
// playhead is currently inside.
type Line struct {
	Item   transcript.Item `json:"item"`
	Active bool            `json:"active"`
}

// Card groups consecutive surviving transcript items from the edit.
type Card struct {
	Items      []transcript.Item `json:"items"`
	Start      float64           `json:"start"`
	End        float64           `json:"end"`
	Speaker    string            `json:"speaker,omitempty"`
	NowPlaying bool              `json:"now_playing"`
}

// Continuous renders every transcript item in chronological order.
func Continuous(x *transcript.Index, currentTime float64) []Line {
	items := x.Items()
	lines := make([]Line, len(items))
	for i, item := range items {
		lines[i] = Line{
			Item:   item,
			Active: currentTime >= item.Start && currentTime < item.End,
		}
	}
	return lines
}

// Cards renders the edit: transcript items fully contained in an active
// segment, grouped into cards split on gaps longer than CardGapThreshold.
func Cards(x *transcript.Index, segments []timeline.Segment, currentTime float64) []Card {
	var surviving []transcript.Item
	for _, item := range x.Items() {
		for _, seg := range segments {
			if seg.Active && item.Start >= seg.Start && item.End <= seg.End {
				surviving = append(surviving, item)
				break
			}
		}
	}

	var cards []Card
	var current []transcript.Item
	for i, item := range surviving {
		if i > 0 && item.Start-surviving[i-1].End > CardGapThreshold {
			cards = append(cards, buildCard(current, currentTime))
			current = nil
		}
		current = append(current, item)
	}
	if len(current) > 0 {
		cards = append(cards, buildCard(current, currentTime))
	}
	return cards
}

func buildCard(items []transcript.Item, currentTime float64) Card {
	first, last := items[0], items[len(items)-1]
	return Card{
		Items:      items,
		Start:      first.Start,
		End:        last.End,
		Speaker:    first.Speaker,
		NowPlaying: currentTime >= first.Start && currentTime <= last.End,
	}
}
