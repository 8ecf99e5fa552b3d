package ai

import (
	"errors"
	"testing"

	"github.com/chatcut/chatcut-agent/internal/timeline"
)

func TestDecodeProposal_SortsByStart(t *testing.T) {
	raw := []byte(`{
		"reply": "done",
		"editedSegments": [
			{"id":"b","start":5,"end":10,"description":"tail","active":true},
			{"id":"a","start":0,"end":5,"description":"head","active":false}
		]
	}`)

	p, err := DecodeProposal(raw)
	if err != nil {
		t.Fatalf("DecodeProposal() error = %v", err)
	}
	if p.Reply != "done" {
		t.Errorf("reply = %q", p.Reply)
	}
	if p.EditedSegments[0].ID != "a" || p.EditedSegments[1].ID != "b" {
		t.Errorf("segments not sorted by start: %v", p.EditedSegments)
	}
}

func TestDecodeProposal_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `this is not json`},
		{"segment wrong type", `{"reply":"x","editedSegments":[{"start":"zero","end":1}]}`},
		{"inverted segment", `{"reply":"x","editedSegments":[{"id":"a","start":5,"end":1,"active":true}]}`},
		{"segments not array", `{"reply":"x","editedSegments":{"id":"a"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeProposal([]byte(tt.raw))
			var verr *timeline.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *timeline.ValidationError", err)
			}
			if verr.Invariant != timeline.InvariantSchema {
				t.Errorf("invariant = %q, want schema", verr.Invariant)
			}
		})
	}
}

func TestDecodeProposal_EmptySegmentsAllowed(t *testing.T) {
	p, err := DecodeProposal([]byte(`{"reply":"nothing to do","editedSegments":[]}`))
	if err != nil {
		t.Fatalf("DecodeProposal() error = %v", err)
	}
	if len(p.EditedSegments) != 0 {
		t.Errorf("segments = %v, want none", p.EditedSegments)
	}
}
