package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chatcut/chatcut-agent/internal/config"
	"github.com/chatcut/chatcut-agent/internal/export"
	"github.com/chatcut/chatcut-agent/internal/media"
	"github.com/chatcut/chatcut-agent/internal/project"
	"github.com/chatcut/chatcut-agent/internal/session"
	"github.com/chatcut/chatcut-agent/internal/timeline"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Post("/projects/{id}/open", openProjectHandler(cfg))
		r.Patch("/projects/{id}", renameProjectHandler(cfg))
		r.Delete("/projects/{id}", deleteProjectHandler(cfg))

		r.Post("/import", importHandler(cfg))

		r.Get("/session", sessionHandler(cfg))
		r.Post("/session/seek", seekHandler(cfg))
		r.Post("/session/play", playHandler(cfg))
		r.Post("/session/pause", pauseHandler(cfg))

		r.Get("/session/segments", getSegmentsHandler(cfg))
		r.Put("/session/segments", putSegmentsHandler(cfg))
		r.Post("/session/segments/{id}/drag", dragHandler(cfg))

		r.Get("/session/chat", getChatHandler(cfg))
		r.Post("/session/chat", postChatHandler(cfg))
		r.Post("/session/chat/voice", postVoiceChatHandler(cfg))

		r.Get("/session/transcript", transcriptHandler(cfg))

		r.Post("/export", exportHandler(cfg))
		r.Get("/media", mediaHandler(cfg))
	})

	return r
}

// writeSessionError maps the session/domain error taxonomy onto HTTP codes.
// Everything else falls through as a 500.
func writeSessionError(w http.ResponseWriter, err error) {
	var validation *timeline.ValidationError
	var unavailable *media.UnavailableError
	var badOutputDir *export.OutputDirError
	switch {
	case errors.Is(err, session.ErrBusy):
		WriteError(w, http.StatusConflict, err.Error(), "BUSY")
	case errors.Is(err, session.ErrNoProject):
		WriteError(w, http.StatusNotFound, err.Error(), "NO_PROJECT")
	case errors.Is(err, session.ErrAnalyzing):
		WriteError(w, http.StatusConflict, err.Error(), "ANALYZING")
	case errors.Is(err, session.ErrNoSpeech):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "NO_SPEECH")
	case errors.Is(err, timeline.ErrSegmentNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.As(err, &validation):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_TIMELINE")
	case errors.As(err, &unavailable):
		WriteError(w, http.StatusBadRequest, err.Error(), "MEDIA_UNAVAILABLE")
	case errors.Is(err, export.ErrNothingToExport):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "NOTHING_TO_EXPORT")
	case errors.As(err, &badOutputDir):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_OUTPUT_DIR")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Repository.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, StatusResponse{
			Session:       cfg.Session.Status(),
			ProjectsCount: len(projects),
		})
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Repository.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}
		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// createProjectHandler registers an empty project shell. Media is attached
// later through /import, which becomes the open session.
func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		now := time.Now().UTC()
		p := &project.Project{
			ID:        uuid.NewString(),
			Name:      req.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := cfg.Repository.Save(r.Context(), p); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func openProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		status, err := cfg.Session.OpenProject(r.Context(), id)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, status)
	}
}

func renameProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req RenameProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		p, err := cfg.Repository.Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if p == nil {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}
		p.Name = req.Name
		p.UpdatedAt = time.Now().UTC()
		if err := cfg.Repository.Save(r.Context(), p); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := cfg.Repository.Delete(r.Context(), id); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if cfg.Session.Status().ProjectID == id {
			cfg.Session.Reset()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func importHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}

		status, err := cfg.Session.ImportMedia(r.Context(), req.Path)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, status)
	}
}

func sessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := SessionResponse{Status: cfg.Session.Status()}
		if playbackStatus, err := cfg.Session.Playback(); err == nil {
			resp.Playback = &playbackStatus
		}
		if segments, err := cfg.Session.Segments(); err == nil {
			resp.Segments = segments
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if err := cfg.Session.Seek(req.Time); err != nil {
			writeSessionError(w, err)
			return
		}
		playbackStatus, _ := cfg.Session.Playback()
		WriteJSON(w, http.StatusOK, playbackStatus)
	}
}

func playHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Session.Play(r.Context()); err != nil {
			writeSessionError(w, err)
			return
		}
		playbackStatus, _ := cfg.Session.Playback()
		WriteJSON(w, http.StatusOK, playbackStatus)
	}
}

func pauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Session.Pause(); err != nil {
			writeSessionError(w, err)
			return
		}
		playbackStatus, _ := cfg.Session.Playback()
		WriteJSON(w, http.StatusOK, playbackStatus)
	}
}

func getSegmentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segments, err := cfg.Session.Segments()
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SegmentsResponse{Segments: segments})
	}
}

func putSegmentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SegmentsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if err := cfg.Session.ReplaceSegments(r.Context(), req.Segments); err != nil {
			writeSessionError(w, err)
			return
		}
		segments, _ := cfg.Session.Segments()
		WriteJSON(w, http.StatusOK, SegmentsResponse{Segments: segments})
	}
}

func dragHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req DragRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		seg, err := cfg.Session.DragSegment(id, timeline.Edge(req.Edge), req.DeltaPx, req.TrackWidth, req.Done)
		if err != nil {
			if errors.Is(err, timeline.ErrBadTrackWidth) {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, DragResponse{Segment: seg})
	}
}

func getChatHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, ChatResponse{Messages: cfg.Session.Chat()})
	}
}

func postChatHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
			WriteError(w, http.StatusBadRequest, "text is required", "BAD_REQUEST")
			return
		}

		outcome, err := cfg.Session.SendInstruction(r.Context(), req.Text)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, outcome)
	}
}

func postVoiceChatHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VoiceChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AudioB64 == "" {
			WriteError(w, http.StatusBadRequest, "audio_b64 is required", "BAD_REQUEST")
			return
		}
		audio, err := base64.StdEncoding.DecodeString(req.AudioB64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "audio_b64 is not valid base64", "BAD_REQUEST")
			return
		}

		text, outcome, err := cfg.Session.SendVoiceInstruction(r.Context(), audio)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, VoiceChatResponse{Text: text, Outcome: outcome})
	}
}

func transcriptHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := r.URL.Query().Get("mode")
		switch mode {
		case "", "continuous":
			lines, err := cfg.Session.TranscriptContinuous()
			if err != nil {
				writeSessionError(w, err)
				return
			}
			WriteJSON(w, http.StatusOK, TranscriptResponse{Mode: "continuous", Lines: lines})
		case "cards":
			cards, err := cfg.Session.TranscriptCards()
			if err != nil {
				writeSessionError(w, err)
				return
			}
			WriteJSON(w, http.StatusOK, TranscriptResponse{Mode: "cards", Cards: cards})
		default:
			WriteError(w, http.StatusBadRequest, "mode must be continuous or cards", "BAD_REQUEST")
		}
	}
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Format != "edl" && req.Format != "mp4" {
			WriteError(w, http.StatusBadRequest, "format must be edl or mp4", "BAD_REQUEST")
			return
		}

		result, err := cfg.Session.Export(r.Context(), req.Format, req.OutputDir, req.FrameRate)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		resp := ExportResponse{Format: req.Format}
		if req.Format == "edl" {
			resp.Content = result
		} else {
			resp.Path = result
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func mediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := cfg.Session.MediaPath()
		if err != nil {
			writeSessionError(w, err)
			return
		}
		if err := cfg.Stream.ServeMedia(w, r, path); err != nil {
			cfg.Logger.Error("media streaming error", "error", err)
		}
	}
}
