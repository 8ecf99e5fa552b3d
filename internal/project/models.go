// Package project persists editing sessions so a project can be closed and
// reopened without re-running analysis.
package project

import (
	"time"

	"github.com/chatcut/chatcut-agent/internal/timeline"
	"github.com/chatcut/chatcut-agent/internal/transcript"
)

// Role values for chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Project is the full saved state of one editing session. Segments,
// transcript, and chat history are stored as JSON columns; the media file
// itself stays on disk at MediaPath.
type Project struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	MediaPath     string             `json:"mediaPath"`
	Duration      float64            `json:"duration"`
	FrameRate     float64            `json:"frameRate"`
	Segments      []timeline.Segment `json:"segments"`
	Transcript    []transcript.Item  `json:"transcript"`
	Messages      []ChatMessage      `json:"messages"`
	VisualContext string             `json:"visualContext"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}
