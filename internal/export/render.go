package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/chatcut/chatcut-agent/internal/timeline"
)

// ErrNothingToExport means every segment is cut; a render would produce an
// empty file.
var ErrNothingToExport = fmt.Errorf("no active segments to export")

// Renderer produces the final cut with a single ffmpeg invocation: each
// active segment becomes a trim/atrim pair, concatenated in timeline order.
type Renderer struct {
	ffmpegPath string
	logger     *slog.Logger
}

func NewRenderer(ffmpegPath string, logger *slog.Logger) *Renderer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Renderer{ffmpegPath: ffmpegPath, logger: logger}
}

func (r *Renderer) Render(ctx context.Context, sourcePath, outPath string, segments []timeline.Segment) error {
	args, err := renderArgs(sourcePath, outPath, segments)
	if err != nil {
		return err
	}

	r.logger.Info("render started", "source", sourcePath, "output", outPath, "segments", countActive(segments))
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		tail := stderr.String()
		if len(tail) > 512 {
			tail = tail[len(tail)-512:]
		}
		return fmt.Errorf("render failed: %w: %s", err, tail)
	}
	r.logger.Info("render finished", "output", outPath)
	return nil
}

// renderArgs builds the ffmpeg argument list. Split out so the command
// construction is testable without the binary.
func renderArgs(sourcePath, outPath string, segments []timeline.Segment) ([]string, error) {
	active := countActive(segments)
	if active == 0 {
		return nil, ErrNothingToExport
	}

	var filter strings.Builder
	var concat strings.Builder
	i := 0
	for _, seg := range segments {
		if !seg.Active {
			continue
		}
		fmt.Fprintf(&filter, "[0:v]trim=start=%.6f:end=%.6f,setpts=PTS-STARTPTS[v%d];", seg.Start, seg.End, i)
		fmt.Fprintf(&filter, "[0:a]atrim=start=%.6f:end=%.6f,asetpts=PTS-STARTPTS[a%d];", seg.Start, seg.End, i)
		fmt.Fprintf(&concat, "[v%d][a%d]", i, i)
		i++
	}
	fmt.Fprintf(&filter, "%sconcat=n=%d:v=1:a=1[outv][outa]", concat.String(), active)

	return []string{
		"-y",
		"-i", sourcePath,
		"-filter_complex", filter.String(),
		"-map", "[outv]",
		"-map", "[outa]",
		outPath,
	}, nil
}

func countActive(segments []timeline.Segment) int {
	n := 0
	for _, seg := range segments {
		if seg.Active {
			n++
		}
	}
	return n
}
