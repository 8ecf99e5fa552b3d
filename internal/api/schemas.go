package api

import (
	"time"

	"github.com/chatcut/chatcut-agent/internal/playback"
	"github.com/chatcut/chatcut-agent/internal/project"
	"github.com/chatcut/chatcut-agent/internal/session"
	"github.com/chatcut/chatcut-agent/internal/timeline"
	"github.com/chatcut/chatcut-agent/internal/view"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	Session       session.Status `json:"session"`
	ProjectsCount int            `json:"projects_count"`
}

type ProjectResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	MediaPath string  `json:"media_path"`
	Duration  float64 `json:"duration"`
	UpdatedAt string  `json:"updated_at"`
}

func ProjectToResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		MediaPath: p.MediaPath,
		Duration:  p.Duration,
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

type RenameProjectRequest struct {
	Name string `json:"name"`
}

type ImportRequest struct {
	Path string `json:"path"`
}

type SessionResponse struct {
	Status   session.Status     `json:"status"`
	Playback *playback.Status   `json:"playback,omitempty"`
	Segments []timeline.Segment `json:"segments"`
}

type SeekRequest struct {
	Time float64 `json:"time"`
}

type SegmentsRequest struct {
	Segments []timeline.Segment `json:"segments"`
}

type SegmentsResponse struct {
	Segments []timeline.Segment `json:"segments"`
}

type DragRequest struct {
	Edge       string  `json:"edge"`
	DeltaPx    float64 `json:"delta_px"`
	TrackWidth float64 `json:"track_width"`
	Done       bool    `json:"done"`
}

type DragResponse struct {
	Segment timeline.Segment `json:"segment"`
}

type ChatRequest struct {
	Text string `json:"text"`
}

type ChatResponse struct {
	Messages []project.ChatMessage `json:"messages"`
}

type VoiceChatRequest struct {
	AudioB64 string `json:"audio_b64"`
}

type VoiceChatResponse struct {
	Text    string           `json:"text"`
	Outcome *session.Outcome `json:"outcome"`
}

type TranscriptResponse struct {
	Mode  string      `json:"mode"`
	Lines []view.Line `json:"lines,omitempty"`
	Cards []view.Card `json:"cards,omitempty"`
}

type ExportRequest struct {
	Format    string  `json:"format"`
	OutputDir string  `json:"output_dir,omitempty"`
	FrameRate float64 `json:"frame_rate,omitempty"`
}

type ExportResponse struct {
	Format  string `json:"format"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
}
