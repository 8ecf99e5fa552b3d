package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckImportable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, make([]byte, 1024), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CheckImportable(path, 2048); err != nil {
		t.Errorf("file under cap rejected: %v", err)
	}
	if err := CheckImportable(path, 0); err != nil {
		t.Errorf("disabled cap rejected file: %v", err)
	}

	err := CheckImportable(path, 512)
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("oversized file: got %v, want UnavailableError", err)
	}

	if err := CheckImportable(filepath.Join(dir, "missing.mp4"), 0); !errors.As(err, &unavailable) {
		t.Errorf("missing file: got %v, want UnavailableError", err)
	}
	if err := CheckImportable(dir, 0); !errors.As(err, &unavailable) {
		t.Errorf("directory: got %v, want UnavailableError", err)
	}
}

func TestParseProbeOutput(t *testing.T) {
	out := []byte(`{
		"format": {"duration": "12.480000"},
		"streams": [
			{"codec_type": "audio", "codec_name": "aac", "avg_frame_rate": "0/0"},
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001"}
		]
	}`)

	result, err := parseProbeOutput(out)
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}
	if result.Duration != 12.48 {
		t.Errorf("duration = %v, want 12.48", result.Duration)
	}
	if result.Codec != "h264" || result.Width != 1920 || result.Height != 1080 {
		t.Errorf("video stream = %q %dx%d", result.Codec, result.Width, result.Height)
	}
	if result.FrameRate < 29.96 || result.FrameRate > 29.98 {
		t.Errorf("frame rate = %v, want ~29.97", result.FrameRate)
	}
}

func TestParseProbeOutputNoDuration(t *testing.T) {
	for _, out := range []string{
		`{"format": {}, "streams": []}`,
		`{"format": {"duration": "0.0"}, "streams": []}`,
		`not json`,
	} {
		if _, err := parseProbeOutput([]byte(out)); err == nil {
			t.Errorf("parseProbeOutput(%q) accepted", out)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"25", 25},
		{"0/0", 0},
		{"junk", 0},
	}
	for _, tt := range tests {
		if got := parseFrameRate(tt.in); got != tt.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
