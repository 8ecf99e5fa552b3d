package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatcut/chatcut-agent/internal/ai"
	"github.com/chatcut/chatcut-agent/internal/api"
	"github.com/chatcut/chatcut-agent/internal/config"
	"github.com/chatcut/chatcut-agent/internal/db"
	"github.com/chatcut/chatcut-agent/internal/export"
	"github.com/chatcut/chatcut-agent/internal/logging"
	"github.com/chatcut/chatcut-agent/internal/media"
	"github.com/chatcut/chatcut-agent/internal/project"
	"github.com/chatcut/chatcut-agent/internal/session"
	"github.com/chatcut/chatcut-agent/internal/stream"
	"github.com/chatcut/chatcut-agent/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.MediaDir(), 0755); err != nil {
		return fmt.Errorf("failed to create media dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting chatcut agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := project.NewRepository(database.Conn())

	deviceID, err := ensureConfigValue(repo, "device_id", 16)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureConfigValue(repo, "auth_token", 32)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                    CHATCUT AGENT v0.1.0                   ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var aiClient ai.Client
	if cfg.AIBaseURL() != "" && cfg.AIKey() != "" {
		aiClient = ai.NewHTTPClient(cfg.AIBaseURL(), cfg.AIKey(), logger)
		logger.Info("ai service enabled", "base_url", cfg.AIBaseURL(),
			"key", logging.SanitizeToken(cfg.AIKey()))
	} else {
		aiClient = ai.NewStubClient(logger)
		logger.Info("no ai key configured, using stub client")
	}

	sess := session.New(session.Options{
		Repo:           repo,
		FFmpeg:         media.NewExec(cfg.FFmpegPath(), logging.WithComponent(logger, "media")),
		AI:             aiClient,
		Renderer:       export.NewRenderer(cfg.FFmpegPath(), logging.WithComponent(logger, "export")),
		Logger:         logging.WithComponent(logger, "session"),
		MediaDir:       cfg.MediaDir(),
		MaxImportBytes: cfg.MaxImportBytes(),
		TickInterval:   cfg.TickInterval(),
		TTSEnabled:     cfg.TTSEnabled(),
	})

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Session:    sess,
		Repository: repo,
		Stream:     stream.NewServer(logging.WithComponent(logger, "stream")),
		Logger:     logging.WithComponent(logger, "api"),
		StartTime:  startTime,
		DeviceID:   deviceID,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Session: sess,
			Logger:  logging.WithComponent(logger, "tray"),
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	sess.Pause()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// ensureConfigValue returns the stored value for key, generating and
// persisting a random hex value of byteLen bytes on first run.
func ensureConfigValue(repo project.Repository, key string, byteLen int) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, key)
	if err == nil && existing != "" {
		return existing, nil
	}

	raw := make([]byte, byteLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	value := hex.EncodeToString(raw)

	if err := repo.SetConfig(ctx, key, value); err != nil {
		return "", err
	}

	return value, nil
}
