package export

import (
	"strings"
	"testing"

	"github.com/chatcut/chatcut-agent/internal/timeline"
)

func TestGenerateEDL_SkipsInactive(t *testing.T) {
	segments := []timeline.Segment{
		{ID: "a", Start: 0, End: 2, Description: "Intro", Active: true},
		{ID: "b", Start: 2, End: 5, Description: "Tangent", Active: false},
		{ID: "c", Start: 5, End: 8, Description: "Close", Active: true},
	}

	edl := GenerateEDL(segments, "Interview Cut", 30.0)

	if !strings.Contains(edl, "TITLE: Interview Cut") {
		t.Fatalf("missing title in EDL: %q", edl)
	}
	if !strings.Contains(edl, "FCM: NON-DROP FRAME") {
		t.Fatalf("missing non-drop-frame FCM: %q", edl)
	}
	if !strings.Contains(edl, "001  AX       V     C        00:00:00:00 00:00:02:00 00:00:00:00 00:00:02:00") {
		t.Fatalf("missing first event line: %q", edl)
	}
	// Record times pack back-to-back: the cut [2,5] does not advance them.
	if !strings.Contains(edl, "002  AX       V     C        00:00:05:00 00:00:08:00 00:00:02:00 00:00:05:00") {
		t.Fatalf("second event line mismatch or bad record offset: %q", edl)
	}
	if strings.Contains(edl, "Tangent") {
		t.Fatalf("inactive segment leaked into EDL: %q", edl)
	}
	if !strings.Contains(edl, "* COMMENT:  Close") {
		t.Fatalf("missing description comment: %q", edl)
	}
}

func TestGenerateEDL_DropFrame(t *testing.T) {
	segments := []timeline.Segment{{ID: "a", Start: 0, End: 1, Active: true}}
	edl := GenerateEDL(segments, "Drop", 29.97)

	if !strings.Contains(edl, "FCM: DROP FRAME") {
		t.Fatalf("expected drop frame FCM, got: %q", edl)
	}
}

func TestSecondsToTimecode(t *testing.T) {
	tests := []struct {
		seconds float64
		fps     int
		want    string
	}{
		{0, 30, "00:00:00:00"},
		{1.5, 30, "00:00:01:15"},
		{61, 25, "00:01:01:00"},
		{3600, 30, "01:00:00:00"},
	}
	for _, tt := range tests {
		if got := secondsToTimecode(tt.seconds, tt.fps); got != tt.want {
			t.Errorf("secondsToTimecode(%v, %d) = %q, want %q", tt.seconds, tt.fps, got, tt.want)
		}
	}
}
