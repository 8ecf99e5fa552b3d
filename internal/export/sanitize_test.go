package export

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" A\nB\rC\tD\x00 ", "ABCD"},
		{"Az09 -_.,()", "Az09 -_.,()"},
		{"bad<>|\"name", "bad____name"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in, 100); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := SanitizeName(strings.Repeat("x", 40), 10); len([]rune(got)) != 10 {
		t.Errorf("max length not applied: %q", got)
	}
}

func TestValidateOutputDir(t *testing.T) {
	dir := t.TempDir()
	if err := ValidateOutputDir(dir); err != nil {
		t.Fatalf("ValidateOutputDir(%q) error = %v, want nil", dir, err)
	}

	for _, bad := range []string{
		"",
		"   ",
		filepath.Join(dir, "..", "elsewhere"),
		filepath.Join(dir, "does-not-exist"),
	} {
		err := ValidateOutputDir(bad)
		if err == nil {
			t.Errorf("ValidateOutputDir(%q) accepted", bad)
			continue
		}
		var dirErr *OutputDirError
		if !errors.As(err, &dirErr) {
			t.Errorf("ValidateOutputDir(%q) error = %T, want *OutputDirError", bad, err)
		}
	}
}
