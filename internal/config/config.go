// Package config provides configuration management for the ChatCut Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort           = 8790
	DefaultLogLevel       = "info"
	DefaultDataDir        = ".chatcut"
	DefaultMaxImportBytes = 50 * 1024 * 1024
	DefaultTickInterval   = 50 * time.Millisecond

	// Environment variable names
	EnvPort           = "CHATCUT_PORT"
	EnvLogLevel       = "CHATCUT_LOG_LEVEL"
	EnvDataDir        = "CHATCUT_DATA_DIR"
	EnvAIBaseURL      = "CHATCUT_AI_BASE_URL"
	EnvAIKey          = "CHATCUT_AI_KEY"
	EnvTTS            = "CHATCUT_TTS"
	EnvHeadless       = "CHATCUT_HEADLESS"
	EnvMaxImportBytes = "CHATCUT_MAX_IMPORT_BYTES"
	EnvFFmpeg         = "CHATCUT_FFMPEG"
	EnvTickMs         = "CHATCUT_TICK_MS"

	// Database filename
	DBFilename = "chatcut.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	MediaDir() string
	AIBaseURL() string
	AIKey() string
	TTSEnabled() bool
	Headless() bool
	MaxImportBytes() int64
	FFmpegPath() string
	TickInterval() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port           int
	logLevel       string
	dataDir        string
	aiBaseURL      string
	aiKey          string
	ttsEnabled     bool
	headless       bool
	maxImportBytes int64
	ffmpegPath     string
	tickInterval   time.Duration
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:           DefaultPort,
		logLevel:       DefaultLogLevel,
		dataDir:        defaultDataDir(),
		maxImportBytes: DefaultMaxImportBytes,
		tickInterval:   DefaultTickInterval,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.aiBaseURL = os.Getenv(EnvAIBaseURL)
	cfg.aiKey = os.Getenv(EnvAIKey)
	cfg.ttsEnabled = boolEnv(EnvTTS)
	cfg.headless = boolEnv(EnvHeadless)
	cfg.ffmpegPath = os.Getenv(EnvFFmpeg)

	if mb := os.Getenv(EnvMaxImportBytes); mb != "" {
		maxBytes, err := strconv.ParseInt(mb, 10, 64)
		if err != nil || maxBytes < 0 {
			return nil, fmt.Errorf("invalid %s: must be a non-negative byte count", EnvMaxImportBytes)
		}
		cfg.maxImportBytes = maxBytes
	}

	if ms := os.Getenv(EnvTickMs); ms != "" {
		tickMs, err := strconv.Atoi(ms)
		if err != nil || tickMs < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive millisecond count", EnvTickMs)
		}
		cfg.tickInterval = time.Duration(tickMs) * time.Millisecond
	}

	return cfg, nil
}

func boolEnv(name string) bool {
	switch os.Getenv(name) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// MediaDir returns the directory holding imported media and derived files
func (c *EnvConfig) MediaDir() string {
	return filepath.Join(c.dataDir, "media")
}

// AIBaseURL returns the AI service base URL; empty selects the stub client
func (c *EnvConfig) AIBaseURL() string {
	return c.aiBaseURL
}

// AIKey returns the AI service API key
func (c *EnvConfig) AIKey() string {
	return c.aiKey
}

// TTSEnabled reports whether spoken replies start enabled
func (c *EnvConfig) TTSEnabled() bool {
	return c.ttsEnabled
}

// Headless reports whether the tray UI is suppressed
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// MaxImportBytes returns the import size cap; zero disables the cap
func (c *EnvConfig) MaxImportBytes() int64 {
	return c.maxImportBytes
}

// FFmpegPath returns the ffmpeg binary path, empty for $PATH lookup
func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

// TickInterval returns the playback synchronizer tick interval
func (c *EnvConfig) TickInterval() time.Duration {
	return c.tickInterval
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
