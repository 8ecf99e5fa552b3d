// Package ai talks to the external reasoning service: transcript analysis,
// visual summaries, edit proposals, and speech synthesis. Everything the
// service returns is treated as untrusted until validated.
package ai

import (
	"context"
	"log/slog"

	"github.com/chatcut/chatcut-agent/internal/timeline"
	"github.com/chatcut/chatcut-agent/internal/transcript"
)

// Proposal is a candidate replacement timeline plus the explanatory reply
// shown in chat.
type Proposal struct {
	Reply          string             `json:"reply"`
	EditedSegments []timeline.Segment `json:"editedSegments"`
}

// ProposalRequest carries the full editing context to the service.
type ProposalRequest struct {
	Transcript    []transcript.Item  `json:"transcript"`
	Segments      []timeline.Segment `json:"segments"`
	Instruction   string             `json:"instruction"`
	VisualContext string             `json:"visual_context,omitempty"`
	Duration      float64            `json:"duration"`
}

type Client interface {
	GenerateTranscript(ctx context.Context, audioPath string) ([]transcript.Item, error)
	AnalyzeVisual(ctx context.Context, frames [][]byte) (string, error)
	// TranscribeSpeech converts a recorded voice instruction to plain text,
	// trimmed, empty when nothing was spoken.
	TranscribeSpeech(ctx context.Context, audio []byte) (string, error)
	ProposeEdit(ctx context.Context, req ProposalRequest) (*Proposal, error)
	// Synthesize returns encoded audio for the given text, or nil when the
	// service produced none. Callers treat failure as non-fatal.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// StubClient satisfies Client without a configured key. Analysis returns a
// single placeholder item so the editor stays usable offline.
type StubClient struct {
	logger *slog.Logger
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

func (c *StubClient) GenerateTranscript(ctx context.Context, audioPath string) ([]transcript.Item, error) {
	c.logger.Info("ai stub: transcript requested", "audio", audioPath)
	return []transcript.Item{
		{ID: 0, Start: 0, End: 1, Text: "[No analysis service configured]", Category: transcript.CategoryNoise},
	}, nil
}

func (c *StubClient) AnalyzeVisual(ctx context.Context, frames [][]byte) (string, error) {
	c.logger.Info("ai stub: visual analysis requested", "frames", len(frames))
	return "Visual analysis skipped", nil
}

func (c *StubClient) TranscribeSpeech(ctx context.Context, audio []byte) (string, error) {
	c.logger.Info("ai stub: voice transcription requested", "bytes", len(audio))
	return "", nil
}

func (c *StubClient) ProposeEdit(ctx context.Context, req ProposalRequest) (*Proposal, error) {
	c.logger.Info("ai stub: edit proposal requested", "instruction", req.Instruction)
	return &Proposal{
		Reply:          "No reasoning service is configured; the timeline was left unchanged.",
		EditedSegments: req.Segments,
	}, nil
}

func (c *StubClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	c.logger.Info("ai stub: speech requested", "chars", len(text))
	return nil, nil
}
