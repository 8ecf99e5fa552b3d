package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// filenameRunes are the characters beyond letters and digits that survive
// sanitization.
const filenameRunes = " -_.,()"

// SanitizeName makes a project name safe to embed in an output filename:
// control characters are stripped, anything else outside the allowed set is
// replaced with '_', and the result is trimmed and capped at maxLen runes.
func SanitizeName(name string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(filenameRunes, r):
			return r
		default:
			return '_'
		}
	}, name)

	cleaned = strings.TrimSpace(cleaned)
	if maxLen > 0 {
		if runes := []rune(cleaned); len(runes) > maxLen {
			cleaned = string(runes[:maxLen])
		}
	}
	return cleaned
}

// OutputDirError reports a rejected render destination. Callers surface it as
// a client error rather than a render failure.
type OutputDirError struct {
	Dir    string
	Reason string
}

func (e *OutputDirError) Error() string {
	return fmt.Sprintf("output dir %q rejected: %s", e.Dir, e.Reason)
}

// ValidateOutputDir accepts only an existing directory named by a clean,
// traversal-free path.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return &OutputDirError{Dir: dir, Reason: "empty path"}
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return &OutputDirError{Dir: dir, Reason: "path traversal"}
		}
	}
	if filepath.Clean(dir) != dir {
		return &OutputDirError{Dir: dir, Reason: "path is not clean"}
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return &OutputDirError{Dir: dir, Reason: "does not exist"}
	case err != nil:
		return &OutputDirError{Dir: dir, Reason: err.Error()}
	case !info.IsDir():
		return &OutputDirError{Dir: dir, Reason: "not a directory"}
	}
	return nil
}
