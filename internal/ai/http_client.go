package ai

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chatcut/chatcut-agent/internal/transcript"
)

const (
	textModel   = "gemini-2.5-flash"
	visionModel = "gemini-3-pro-preview"
	speechModel = "gemini-2.5-flash-preview-tts"

	maxResponseBytes = 4 << 20
)

// APIError is a failed call to the reasoning service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ai service: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable reports whether retrying could help. Client errors are
// permanent; the agent never retries automatically either way.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// HTTPClient is the real reasoning-service client. It is rebuilt whenever
// the API key changes; the session owns the current instance.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, apiKey string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

type generateRequest struct {
	Model    string          `json:"model"`
	Prompt   string          `json:"prompt,omitempty"`
	System   string          `json:"system,omitempty"`
	AudioB64 string          `json:"audio_b64,omitempty"`
	Images   []string        `json:"images_b64,omitempty"`
	Context  json.RawMessage `json:"context,omitempty"`
}

func (c *HTTPClient) GenerateTranscript(ctx context.Context, audioPath string) ([]transcript.Item, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read extracted audio: %w", err)
	}

	raw, err := c.generate(ctx, "/v1/transcript", generateRequest{
		Model:    textModel,
		Prompt:   transcriptPrompt,
		AudioB64: base64.StdEncoding.EncodeToString(audio),
	})
	if err != nil {
		return nil, err
	}

	items, err := decodeTranscript(raw)
	if err != nil {
		return nil, err
	}

	c.logger.Info("transcript generated", "items", len(items))
	return items, nil
}

func (c *HTTPClient) AnalyzeVisual(ctx context.Context, frames [][]byte) (string, error) {
	images := make([]string, len(frames))
	for i, frame := range frames {
		images[i] = base64.StdEncoding.EncodeToString(frame)
	}

	raw, err := c.generate(ctx, "/v1/visual", generateRequest{
		Model:  visionModel,
		Prompt: visualPrompt,
		Images: images,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.Text == "" {
		return "No visual description available.", nil
	}
	return out.Text, nil
}

func (c *HTTPClient) TranscribeSpeech(ctx context.Context, audio []byte) (string, error) {
	raw, err := c.generate(ctx, "/v1/voice", generateRequest{
		Model:    textModel,
		Prompt:   voicePrompt,
		AudioB64: base64.StdEncoding.EncodeToString(audio),
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", schemaError("voice transcription payload is malformed: %v", err)
	}
	return strings.TrimSpace(out.Text), nil
}

func (c *HTTPClient) ProposeEdit(ctx context.Context, req ProposalRequest) (*Proposal, error) {
	contextBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal edit context: %w", err)
	}

	raw, err := c.generate(ctx, "/v1/edit", generateRequest{
		Model:   textModel,
		System:  editSystemPrompt,
		Prompt:  editPrompt(req),
		Context: contextBytes,
	})
	if err != nil {
		return nil, err
	}

	proposal, err := DecodeProposal(raw)
	if err != nil {
		return nil, err
	}

	c.logger.Info("edit proposal received",
		"segments", len(proposal.EditedSegments),
		"reply_chars", len(proposal.Reply),
	)
	return proposal, nil
}

func (c *HTTPClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	raw, err := c.generate(ctx, "/v1/speech", generateRequest{
		Model:  speechModel,
		Prompt: text,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		AudioB64 string `json:"audio_b64"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.AudioB64 == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(out.AudioB64)
}

func (c *HTTPClient) generate(ctx context.Context, path string, payload generateRequest) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Chatcut-Request-Id", newRequestID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

func newRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
