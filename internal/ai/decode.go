package ai

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/chatcut/chatcut-agent/internal/timeline"
	"github.com/chatcut/chatcut-agent/internal/transcript"
)

// DecodeProposal parses a raw edit proposal from the service. The payload is
// remote-model output and may be arbitrarily malformed; any shape problem is
// reported as a schema ValidationError, never a panic. Segments come back
// sorted by start. Timeline invariants (coverage, overlap) are checked later
// by the store, which owns the duration.
func DecodeProposal(raw []byte) (*Proposal, error) {
	var payload struct {
		Reply          string            `json:"reply"`
		EditedSegments []json.RawMessage `json:"editedSegments"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, schemaError("proposal is not a JSON object: %v", err)
	}

	segments := make([]timeline.Segment, 0, len(payload.EditedSegments))
	for i, rawSeg := range payload.EditedSegments {
		var seg timeline.Segment
		if err := json.Unmarshal(rawSeg, &seg); err != nil {
			return nil, schemaError("segment %d is malformed: %v", i, err)
		}
		if seg.End < seg.Start {
			return nil, schemaError("segment %d has end %.3f before start %.3f", i, seg.End, seg.Start)
		}
		segments = append(segments, seg)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	return &Proposal{Reply: payload.Reply, EditedSegments: segments}, nil
}

func decodeTranscript(raw []byte) ([]transcript.Item, error) {
	var out struct {
		Items []transcript.Item `json:"items"`
	}
	if err := json.Unmarshal(raw, &out); err == nil && len(out.Items) > 0 {
		return out.Items, nil
	}

	// Some service versions return the bare array.
	var items []transcript.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, schemaError("transcript payload is malformed: %v", err)
	}
	return items, nil
}

func schemaError(format string, args ...interface{}) *timeline.ValidationError {
	return &timeline.ValidationError{
		Invariant: timeline.InvariantSchema,
		Detail:    fmt.Sprintf(format, args...),
	}
}
