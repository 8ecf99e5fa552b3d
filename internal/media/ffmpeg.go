// Package media wraps the external ffmpeg tools used for probing, audio
// extraction, and keyframe capture. No decoding happens in-process.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// UnavailableError blocks progression to the analysis stage: there is no
// usable media to analyze.
type UnavailableError struct {
	Path   string
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("media unavailable: %s: %s", e.Path, e.Reason)
}

type ProbeResult struct {
	Duration  float64
	Width     int
	Height    int
	Codec     string
	FrameRate float64
}

type FFmpeg interface {
	Probe(ctx context.Context, path string) (*ProbeResult, error)
	ExtractAudio(ctx context.Context, path, wavPath string) error
	// Keyframes captures JPEG frames at 0/25/50/75% of the duration,
	// quarter-scaled, for visual analysis.
	Keyframes(ctx context.Context, path string, duration float64) ([][]byte, error)
}

// CheckImportable rejects missing or oversized files before any analysis
// work is queued. maxBytes <= 0 disables the size cap.
func CheckImportable(path string, maxBytes int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return &UnavailableError{Path: path, Reason: "file not found"}
	}
	if info.IsDir() {
		return &UnavailableError{Path: path, Reason: "path is a directory"}
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return &UnavailableError{
			Path:   path,
			Reason: fmt.Sprintf("file is %d bytes, cap is %d", info.Size(), maxBytes),
		}
	}
	return nil
}

// Exec shells out to the ffmpeg/ffprobe binaries.
type Exec struct {
	ffmpegPath  string
	ffprobePath string
	logger      *slog.Logger
}

func NewExec(ffmpegPath string, logger *slog.Logger) *Exec {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	ffprobePath := "ffprobe"
	if dir := filepath.Dir(ffmpegPath); dir != "." {
		ffprobePath = filepath.Join(dir, "ffprobe")
	}
	return &Exec{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, logger: logger}
}

func (f *Exec) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	out, err := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration:stream=width,height,codec_name,avg_frame_rate,codec_type",
		"-of", "json",
		path,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeOutput(out)
}

func parseProbeOutput(out []byte) (*ProbeResult, error) {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecName    string `json:"codec_name"`
			CodecType    string `json:"codec_type"`
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			AvgFrameRate string `json:"avg_frame_rate"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil || duration <= 0 {
		return nil, fmt.Errorf("media has no usable duration (%q)", probe.Format.Duration)
	}

	result := &ProbeResult{Duration: duration}
	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		result.Width = stream.Width
		result.Height = stream.Height
		result.Codec = stream.CodecName
		result.FrameRate = parseFrameRate(stream.AvgFrameRate)
		break
	}
	return result, nil
}

func parseFrameRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func (f *Exec) ExtractAudio(ctx context.Context, path, wavPath string) error {
	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-y",
		"-i", path,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		wavPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("audio extraction failed: %w: %s", err, truncate(stderr.String(), 512))
	}
	f.logger.Info("audio extracted", "source", path, "wav", wavPath)
	return nil
}

func (f *Exec) Keyframes(ctx context.Context, path string, duration float64) ([][]byte, error) {
	var frames [][]byte
	for _, fraction := range []float64{0, 0.25, 0.5, 0.75} {
		offset := duration * fraction
		cmd := exec.CommandContext(ctx, f.ffmpegPath,
			"-ss", strconv.FormatFloat(offset, 'f', 3, 64),
			"-i", path,
			"-frames:v", "1",
			"-vf", "scale=iw/4:ih/4",
			"-f", "image2",
			"-c:v", "mjpeg",
			"pipe:1",
		)
		var stdout bytes.Buffer
		cmd.Stdout = &stdout
		if err := cmd.Run(); err != nil {
			f.logger.Warn("keyframe capture failed", "offset", offset, "error", err)
			continue
		}
		if stdout.Len() > 0 {
			frames = append(frames, stdout.Bytes())
		}
	}
	return frames, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Stub satisfies FFmpeg without the binaries, for tests and keyless demos.
type Stub struct {
	logger   *slog.Logger
	Duration float64
}

func NewStub(logger *slog.Logger) *Stub {
	return &Stub{logger: logger, Duration: 60}
}

func (f *Stub) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	f.logger.Info("ffmpeg stub: probe requested", "path", path)
	return &ProbeResult{Duration: f.Duration, FrameRate: 30}, nil
}

func (f *Stub) ExtractAudio(ctx context.Context, path, wavPath string) error {
	f.logger.Info("ffmpeg stub: audio extraction requested", "input", path, "output", wavPath)
	return os.WriteFile(wavPath, []byte("RIFF"), 0o644)
}

func (f *Stub) Keyframes(ctx context.Context, path string, duration float64) ([][]byte, error) {
	f.logger.Info("ffmpeg stub: keyframes requested", "path", path)
	return nil, nil
}
