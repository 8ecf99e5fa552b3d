package view

import (
	"testing"

	"github.com/chatcut/chatcut-agent/internal/timeline"
	"github.com/chatcut/chatcut-agent/internal/transcript"
)

func mustIndex(t *testing.T, items []transcript.Item) *transcript.Index {
	t.Helper()
	x, err := transcript.NewIndex(items)
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	return x
}

func TestContinuous_HighlightsPlayhead(t *testing.T) {
	x := mustIndex(t, []transcript.Item{
		{ID: 0, Start: 0, End: 1, Category: transcript.CategorySpeech},
		{ID: 1, Start: 1, End: 2, Category: transcript.CategorySpeech},
	})

	lines := Continuous(x, 1.5)
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[0].Active {
		t.Error("item 0 should not be highlighted at t=1.5")
	}
	if !lines[1].Active {
		t.Error("item 1 should be highlighted at t=1.5")
	}
}

func TestCards_SplitsOnGapThreshold(t *testing.T) {
	x := mustIndex(t, []transcript.Item{
		{ID: 0, Start: 0, End: 1, Text: "a", Category: transcript.CategorySpeech},
		{ID: 1, Start: 1.2, End: 2, Text: "b", Category: transcript.CategorySpeech},
		{ID: 2, Start: 5, End: 6, Text: "c", Category: transcript.CategorySpeech},
	})
	segments := []timeline.Segment{
		{ID: "full", Start: 0, End: 6, Active: true},
	}

	cards := Cards(x, segments, 0)
	if len(cards) != 2 {
		t.Fatalf("len(cards) = %d, want 2 (3.0s gap exceeds %vs threshold)", len(cards), CardGapThreshold)
	}
	if len(cards[0].Items) != 2 || cards[0].Items[0].ID != 0 || cards[0].Items[1].ID != 1 {
		t.Errorf("first card = %v, want items 0 and 1", cards[0].Items)
	}
	if len(cards[1].Items) != 1 || cards[1].Items[0].ID != 2 {
		t.Errorf("second card = %v, want item 2", cards[1].Items)
	}
}

func TestCards_ExcludesCutMaterial(t *testing.T) {
	x := mustIndex(t, []transcript.Item{
		{ID: 0, Start: 0, End: 1, Category: transcript.CategorySpeech},
		{ID: 1, Start: 5, End: 7, Category: transcript.CategorySpeech},
		{ID: 2, Start: 8, End: 9, Category: transcript.CategorySpeech},
	})
	segments := []timeline.Segment{
		{ID: "a", Start: 0, End: 4, Active: true},
		{ID: "b", Start: 4, End: 8, Active: false},
		{ID: "c", Start: 8, End: 10, Active: true},
	}

	cards := Cards(x, segments, 0)
	if len(cards) != 2 {
		t.Fatalf("len(cards) = %d, want 2", len(cards))
	}
	for _, card := range cards {
		for _, item := range card.Items {
			if item.ID == 1 {
				t.Error("item 1 lies in cut material and must not surface")
			}
		}
	}
}

func TestCards_NowPlaying(t *testing.T) {
	x := mustIndex(t, []transcript.Item{
		{ID: 0, Start: 0, End: 1, Category: transcript.CategorySpeech},
		{ID: 1, Start: 5, End: 6, Category: transcript.CategorySpeech},
	})
	segments := []timeline.Segment{{ID: "full", Start: 0, End: 6, Active: true}}

	cards := Cards(x, segments, 5.5)
	if len(cards) != 2 {
		t.Fatalf("len(cards) = %d, want 2", len(cards))
	}
	if cards[0].NowPlaying {
		t.Error("first card should not be playing at t=5.5")
	}
	if !cards[1].NowPlaying {
		t.Error("second card should be playing at t=5.5")
	}
}

func TestCards_EmptyWhenNothingSurvives(t *testing.T) {
	x := mustIndex(t, []transcript.Item{
		{ID: 0, Start: 0, End: 1, Category: transcript.CategorySpeech},
	})
	segments := []timeline.Segment{{ID: "a", Start: 0, End: 6, Active: false}}

	if cards := Cards(x, segments, 0); len(cards) != 0 {
		t.Errorf("Cards() = %v, want none", cards)
	}
}
