package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/chatcut/chatcut-agent/internal/ai"
	"github.com/chatcut/chatcut-agent/internal/project"
	"github.com/chatcut/chatcut-agent/internal/timeline"
)

// Outcome reports what an instruction did. Applied is false when the
// proposal failed validation; the reply is surfaced either way.
type Outcome struct {
	Reply    string             `json:"reply"`
	Applied  bool               `json:"applied"`
	Segments []timeline.Segment `json:"segments"`
}

// SendInstruction runs one edit round trip: user message in, proposal from
// the service, validate, apply or reject. Only one may be in flight; the
// lock is dropped during the remote call so playback stays responsive.
func (s *Session) SendInstruction(ctx context.Context, text string) (*Outcome, error) {
	s.mu.Lock()
	if s.projectID == "" {
		s.mu.Unlock()
		return nil, ErrNoProject
	}
	if s.index == nil {
		s.mu.Unlock()
		return nil, ErrAnalyzing
	}
	if s.busy || s.drag != nil {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	gen := s.generation
	s.messages = append(s.messages, project.ChatMessage{Role: project.RoleUser, Text: text})
	req := ai.ProposalRequest{
		Transcript:    s.index.Items(),
		Segments:      s.store.Segments(),
		Instruction:   text,
		VisualContext: s.visualContext,
		Duration:      s.duration,
	}
	client := s.aiClient
	s.mu.Unlock()

	proposal, err := client.ProposeEdit(ctx, req)

	s.mu.Lock()
	if gen != s.generation {
		// Project changed underneath the call; resetLocked already
		// cleared busy. Nothing to apply or record.
		s.mu.Unlock()
		s.logger.Info("edit proposal discarded, project changed")
		return nil, ErrNoProject
	}
	s.busy = false

	if err != nil {
		reply := "The edit service is unavailable. Your timeline was not changed."
		s.messages = append(s.messages, project.ChatMessage{Role: project.RoleAssistant, Text: reply})
		segments := s.store.Segments()
		s.mu.Unlock()
		s.logger.Error("edit proposal failed", "error", err)
		return &Outcome{Reply: reply, Applied: false, Segments: segments}, nil
	}

	sort.SliceStable(proposal.EditedSegments, func(i, j int) bool {
		return proposal.EditedSegments[i].Start < proposal.EditedSegments[j].Start
	})

	applied := true
	if err := s.store.ReplaceAll(proposal.EditedSegments); err != nil {
		// Fail closed: the reply still reaches the user, the timeline
		// stays exactly as it was.
		applied = false
		s.logger.Warn("edit proposal rejected", "error", err)
	} else if s.syncer != nil {
		if first, ok := firstActiveStart(proposal.EditedSegments); ok {
			s.syncer.HandleSeek(first)
		}
	}
	s.messages = append(s.messages, project.ChatMessage{Role: project.RoleAssistant, Text: proposal.Reply})
	segments := s.store.Segments()
	speak := s.ttsEnabled && applied
	s.mu.Unlock()

	if err := s.saveProject(ctx); err != nil {
		s.logger.Warn("project save failed after edit", "error", err)
	}
	if speak {
		go s.speak(gen, proposal.Reply)
	}
	return &Outcome{Reply: proposal.Reply, Applied: applied, Segments: segments}, nil
}

// SendVoiceInstruction transcribes a recorded instruction and runs it through
// the same reconciliation path as typed chat, returning the recognized text
// alongside the outcome.
func (s *Session) SendVoiceInstruction(ctx context.Context, audio []byte) (string, *Outcome, error) {
	if len(audio) == 0 {
		return "", nil, ErrNoSpeech
	}

	s.mu.Lock()
	if s.projectID == "" {
		s.mu.Unlock()
		return "", nil, ErrNoProject
	}
	if s.index == nil {
		s.mu.Unlock()
		return "", nil, ErrAnalyzing
	}
	if s.busy || s.drag != nil {
		s.mu.Unlock()
		return "", nil, ErrBusy
	}
	client := s.aiClient
	s.mu.Unlock()

	text, err := client.TranscribeSpeech(ctx, audio)
	if err != nil {
		return "", nil, fmt.Errorf("transcribe instruction: %w", err)
	}
	if text == "" {
		return "", nil, ErrNoSpeech
	}

	out, err := s.SendInstruction(ctx, text)
	return text, out, err
}

func firstActiveStart(segments []timeline.Segment) (float64, bool) {
	for _, seg := range segments {
		if seg.Active {
			return seg.Start, true
		}
	}
	return 0, false
}

// DragSegment moves one boundary of one segment by a pixel delta. A drag
// session survives across calls until done is set; starting a different
// drag implicitly finishes the previous one.
func (s *Session) DragSegment(id string, edge timeline.Edge, deltaPx, trackWidthPx float64, done bool) (timeline.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID == "" {
		return timeline.Segment{}, ErrNoProject
	}
	if s.busy {
		return timeline.Segment{}, ErrBusy
	}

	if s.drag == nil || s.drag.SegmentID() != id || s.drag.DragEdge() != edge {
		if s.drag != nil {
			s.drag.End()
		}
		drag, err := timeline.NewDrag(s.store, id, edge, trackWidthPx)
		if err != nil {
			s.drag = nil
			return timeline.Segment{}, err
		}
		s.drag = drag
	}

	seg, err := s.drag.Move(deltaPx)
	if err != nil {
		return timeline.Segment{}, err
	}
	if done {
		s.drag.End()
		s.drag = nil
	}
	return seg, nil
}
