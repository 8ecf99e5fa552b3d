// Package session owns the live editing state: the segment store, the
// transcript, the chat log, and playback. Every mutation funnels through the
// Session so the HTTP handlers never race each other.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatcut/chatcut-agent/internal/ai"
	"github.com/chatcut/chatcut-agent/internal/export"
	"github.com/chatcut/chatcut-agent/internal/media"
	"github.com/chatcut/chatcut-agent/internal/playback"
	"github.com/chatcut/chatcut-agent/internal/project"
	"github.com/chatcut/chatcut-agent/internal/timeline"
	"github.com/chatcut/chatcut-agent/internal/transcript"
	"github.com/chatcut/chatcut-agent/internal/view"
)

var (
	// ErrBusy means an edit proposal is in flight. The caller surfaces it
	// and the user retries; requests are never queued.
	ErrBusy      = errors.New("an edit is already being applied")
	ErrNoProject = errors.New("no project is open")
	ErrAnalyzing = errors.New("analysis is still running")
	ErrNoSpeech  = errors.New("no speech detected in recording")
)

// Analysis is the coarse lifecycle the tray and /status report.
type Analysis string

const (
	AnalysisIdle    Analysis = "idle"
	AnalysisRunning Analysis = "analyzing"
	AnalysisReady   Analysis = "ready"
)

// Options carries the collaborators the Session needs. AI starts as the
// stub when no key is configured and can be swapped at runtime.
type Options struct {
	Repo           project.Repository
	FFmpeg         media.FFmpeg
	AI             ai.Client
	Renderer       *export.Renderer
	Logger         *slog.Logger
	MediaDir       string
	MaxImportBytes int64
	TickInterval   time.Duration
	TTSEnabled     bool
}

type Session struct {
	mu sync.Mutex

	repo     project.Repository
	ffmpeg   media.FFmpeg
	aiClient ai.Client
	renderer *export.Renderer
	logger   *slog.Logger

	mediaDir       string
	maxImportBytes int64
	tickInterval   time.Duration
	ttsEnabled     bool

	// Live project state. Nil/zero until a project is opened or imported.
	projectID     string
	projectName   string
	mediaPath     string
	duration      float64
	frameRate     float64
	visualContext string
	store         *timeline.Store
	index         *transcript.Index
	messages      []project.ChatMessage
	syncer        *playback.Synchronizer
	secondary     playback.Clock

	analysis Analysis
	busy     bool
	drag     *timeline.Drag

	// generation invalidates async results from imports, proposals, and
	// speech when the project is reset or switched underneath them.
	generation uint64
}

func New(opts Options) *Session {
	return &Session{
		repo:           opts.Repo,
		ffmpeg:         opts.FFmpeg,
		aiClient:       opts.AI,
		renderer:       opts.Renderer,
		logger:         opts.Logger,
		mediaDir:       opts.MediaDir,
		maxImportBytes: opts.MaxImportBytes,
		tickInterval:   opts.TickInterval,
		ttsEnabled:     opts.TTSEnabled,
		analysis:       AnalysisIdle,
	}
}

// SetAIClient swaps the reasoning client, e.g. after the API key changes.
func (s *Session) SetAIClient(c ai.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aiClient = c
}

func (s *Session) SetTTSEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttsEnabled = enabled
}

func (s *Session) TTSEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttsEnabled
}

// Status is the snapshot served by /status and the tray.
type Status struct {
	ProjectID   string   `json:"projectId"`
	ProjectName string   `json:"projectName"`
	MediaPath   string   `json:"mediaPath"`
	Duration    float64  `json:"duration"`
	Analysis    Analysis `json:"analysis"`
	Busy        bool     `json:"busy"`
	TTSEnabled  bool     `json:"ttsEnabled"`
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		ProjectID:   s.projectID,
		ProjectName: s.projectName,
		MediaPath:   s.mediaPath,
		Duration:    s.duration,
		Analysis:    s.analysis,
		Busy:        s.busy,
		TTSEnabled:  s.ttsEnabled,
	}
}

func (s *Session) MediaPath() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mediaPath == "" {
		return "", ErrNoProject
	}
	return s.mediaPath, nil
}

// ImportMedia validates and probes the file synchronously, seeds the
// timeline, then runs transcript and visual analysis in the background.
// Results landing after a project switch are discarded.
func (s *Session) ImportMedia(ctx context.Context, path string) (Status, error) {
	if err := media.CheckImportable(path, s.maxImportBytes); err != nil {
		return Status{}, err
	}

	probe, err := s.ffmpeg.Probe(ctx, path)
	if err != nil {
		return Status{}, &media.UnavailableError{Path: path, Reason: err.Error()}
	}

	s.mu.Lock()
	s.resetLocked()
	s.projectID = uuid.NewString()
	s.projectName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s.mediaPath = path
	s.duration = probe.Duration
	s.frameRate = probe.FrameRate
	s.analysis = AnalysisRunning
	s.store.Reset(probe.Duration)
	s.attachPlaybackLocked()
	gen := s.generation
	status := s.statusLocked()
	s.mu.Unlock()

	if err := s.saveProject(ctx); err != nil {
		s.logger.Warn("project save failed after import", "error", err)
	}

	go s.analyze(gen, path, probe.Duration)

	return status, nil
}

// analyze runs off the request goroutine: audio extraction, transcript,
// keyframe capture, visual summary, greeting, optional speech.
func (s *Session) analyze(gen uint64, path string, duration float64) {
	ctx := context.Background()

	wavPath := filepath.Join(s.mediaDir, fmt.Sprintf("audio-%d.wav", gen))
	var items []transcript.Item
	if err := s.ffmpeg.ExtractAudio(ctx, path, wavPath); err != nil {
		s.logger.Error("audio extraction failed", "error", err)
	} else {
		var err error
		items, err = s.aiClient.GenerateTranscript(ctx, wavPath)
		if err != nil {
			s.logger.Error("transcript generation failed", "error", err)
		}
	}

	visual := ""
	if frames, err := s.ffmpeg.Keyframes(ctx, path, duration); err == nil && len(frames) > 0 {
		if visual, err = s.aiClient.AnalyzeVisual(ctx, frames); err != nil {
			s.logger.Warn("visual analysis failed", "error", err)
			visual = ""
		}
	}

	index, err := transcript.NewIndex(items)
	if err != nil {
		s.logger.Error("transcript rejected", "error", err)
		index = nil
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Info("analysis result discarded, project changed")
		return
	}
	s.index = index
	s.visualContext = visual
	s.analysis = AnalysisReady
	greeting := "Your video is loaded and analyzed. Tell me what to cut and I'll take care of the edit."
	s.messages = append(s.messages, project.ChatMessage{Role: project.RoleAssistant, Text: greeting})
	speak := s.ttsEnabled
	s.mu.Unlock()

	if err := s.saveProject(ctx); err != nil {
		s.logger.Warn("project save failed after analysis", "error", err)
	}
	if speak {
		s.speak(gen, greeting)
	}
}

// speak is fire-and-forget: synthesis failures are logged and swallowed.
func (s *Session) speak(gen uint64, text string) {
	audio, err := s.aiClient.Synthesize(context.Background(), text)
	if err != nil {
		s.logger.Warn("speech synthesis failed", "error", err)
		return
	}
	s.mu.Lock()
	stale := gen != s.generation
	s.mu.Unlock()
	if stale || len(audio) == 0 {
		return
	}
	s.logger.Info("speech synthesized", "bytes", len(audio))
}

// resetLocked discards all live state and invalidates pending async work.
func (s *Session) resetLocked() {
	if s.syncer != nil {
		s.syncer.Pause()
	}
	s.generation++
	s.projectID = ""
	s.projectName = ""
	s.mediaPath = ""
	s.duration = 0
	s.frameRate = 0
	s.visualContext = ""
	s.store = timeline.NewStore()
	s.index = nil
	s.messages = nil
	s.syncer = nil
	s.secondary = nil
	s.analysis = AnalysisIdle
	s.busy = false
	s.drag = nil
}

func (s *Session) attachPlaybackLocked() {
	primary := playback.NewSystemClock(s.duration)
	secondary := playback.NewSystemClock(s.duration)
	s.secondary = secondary
	s.syncer = playback.NewSynchronizer(s.store, primary, secondary, s.logger)
	if s.tickInterval > 0 {
		s.syncer.SetTickInterval(s.tickInterval)
	}
}

func (s *Session) statusLocked() Status {
	return Status{
		ProjectID:   s.projectID,
		ProjectName: s.projectName,
		MediaPath:   s.mediaPath,
		Duration:    s.duration,
		Analysis:    s.analysis,
		Busy:        s.busy,
		TTSEnabled:  s.ttsEnabled,
	}
}

// Reset closes the current project without opening another.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// OpenProject restores a saved project. Playback starts stopped at zero;
// analysis state depends on whether a transcript was saved.
func (s *Session) OpenProject(ctx context.Context, id string) (Status, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Status{}, fmt.Errorf("load project: %w", err)
	}
	if p == nil {
		return Status{}, ErrNoProject
	}

	var index *transcript.Index
	if len(p.Transcript) > 0 {
		if index, err = transcript.NewIndex(p.Transcript); err != nil {
			return Status{}, fmt.Errorf("saved transcript rejected: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.projectID = p.ID
	s.projectName = p.Name
	s.mediaPath = p.MediaPath
	s.duration = p.Duration
	s.frameRate = p.FrameRate
	s.visualContext = p.VisualContext
	s.index = index
	s.messages = append([]project.ChatMessage(nil), p.Messages...)
	if index != nil {
		s.analysis = AnalysisReady
	}
	if len(p.Segments) > 0 {
		s.store.Reset(p.Duration)
		if err := s.store.ReplaceAll(p.Segments); err != nil {
			s.resetLocked()
			return Status{}, fmt.Errorf("saved segments rejected: %w", err)
		}
	} else if p.Duration > 0 {
		s.store.Reset(p.Duration)
	}
	if p.Duration > 0 {
		s.attachPlaybackLocked()
	}
	return s.statusLocked(), nil
}

// saveProject persists the current snapshot. Called outside s.mu.
func (s *Session) saveProject(ctx context.Context) error {
	s.mu.Lock()
	if s.projectID == "" {
		s.mu.Unlock()
		return nil
	}
	var items []transcript.Item
	if s.index != nil {
		items = s.index.Items()
	}
	p := &project.Project{
		ID:            s.projectID,
		Name:          s.projectName,
		MediaPath:     s.mediaPath,
		Duration:      s.duration,
		FrameRate:     s.frameRate,
		Segments:      s.store.Segments(),
		Transcript:    items,
		Messages:      append([]project.ChatMessage(nil), s.messages...),
		VisualContext: s.visualContext,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	s.mu.Unlock()
	return s.repo.Save(ctx, p)
}

// Playback controls. All are no-ops against ErrNoProject when nothing is
// loaded.

func (s *Session) Play(ctx context.Context) error {
	s.mu.Lock()
	syncer := s.syncer
	s.mu.Unlock()
	if syncer == nil {
		return ErrNoProject
	}
	syncer.Play(ctx)
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	syncer := s.syncer
	s.mu.Unlock()
	if syncer == nil {
		return ErrNoProject
	}
	syncer.Pause()
	return nil
}

func (s *Session) Seek(t float64) error {
	s.mu.Lock()
	syncer := s.syncer
	s.mu.Unlock()
	if syncer == nil {
		return ErrNoProject
	}
	syncer.HandleSeek(t)
	return nil
}

func (s *Session) Playback() (playback.Status, error) {
	s.mu.Lock()
	syncer := s.syncer
	s.mu.Unlock()
	if syncer == nil {
		return playback.Status{}, ErrNoProject
	}
	return syncer.Status(), nil
}

// Segments returns the current timeline snapshot.
func (s *Session) Segments() ([]timeline.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID == "" {
		return nil, ErrNoProject
	}
	return s.store.Segments(), nil
}

// ReplaceSegments applies a caller-supplied timeline atomically.
func (s *Session) ReplaceSegments(ctx context.Context, segments []timeline.Segment) error {
	s.mu.Lock()
	if s.projectID == "" {
		s.mu.Unlock()
		return ErrNoProject
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	err := s.store.ReplaceAll(segments)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := s.saveProject(ctx); err != nil {
		s.logger.Warn("project save failed after segment replace", "error", err)
	}
	return nil
}

// Chat returns a copy of the conversation so far.
func (s *Session) Chat() []project.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]project.ChatMessage(nil), s.messages...)
}

// Transcript views. Both are pure projections over the current state.

func (s *Session) TranscriptContinuous() ([]view.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil, ErrAnalyzing
	}
	t := 0.0
	if s.syncer != nil {
		t = s.syncer.Status().CurrentTime
	}
	return view.Continuous(s.index, t), nil
}

func (s *Session) TranscriptCards() ([]view.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil, ErrAnalyzing
	}
	t := 0.0
	if s.syncer != nil {
		t = s.syncer.Status().CurrentTime
	}
	return view.Cards(s.index, s.store.Segments(), t), nil
}

// Export renders the active timeline as an EDL string or an mp4 file,
// returning the output path (mp4) or content (edl). A positive frameRate
// overrides the probed rate for EDL timecodes.
func (s *Session) Export(ctx context.Context, format, outputDir string, frameRate float64) (string, error) {
	s.mu.Lock()
	if s.projectID == "" {
		s.mu.Unlock()
		return "", ErrNoProject
	}
	name := s.projectName
	mediaPath := s.mediaPath
	if frameRate <= 0 {
		frameRate = s.frameRate
	}
	segments := s.store.Segments()
	s.mu.Unlock()

	switch format {
	case "edl":
		return export.GenerateEDL(segments, export.SanitizeName(name, 80), frameRate), nil
	case "mp4":
		if err := export.ValidateOutputDir(outputDir); err != nil {
			return "", err
		}
		outPath := filepath.Join(outputDir, export.SanitizeName(name, 80)+"-cut.mp4")
		if err := s.renderer.Render(ctx, mediaPath, outPath, segments); err != nil {
			return "", err
		}
		return outPath, nil
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}
