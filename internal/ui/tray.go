// Package ui provides the system tray surface: status at a glance, a TTS
// toggle, and quit. Headless installs skip it entirely.
package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/chatcut/chatcut-agent/internal/session"
)

type Tray struct {
	session *session.Session
	logger  *slog.Logger

	statusItem   *systray.MenuItem
	projectsItem *systray.MenuItem
	ttsItem      *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	Session *session.Session
	Logger  *slog.Logger
	OnQuit  func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		session: cfg.Session,
		logger:  cfg.Logger,
		onQuit:  cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("ChatCut")
	systray.SetTooltip("ChatCut Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.projectsItem = systray.AddMenuItem("Projects: 0", "Saved projects")
	t.projectsItem.Disable()

	systray.AddSeparator()

	t.ttsItem = systray.AddMenuItem(ttsTitle(t.session.TTSEnabled()), "Speak assistant replies aloud")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit ChatCut Agent")

	go func() {
		for {
			select {
			case <-t.ttsItem.ClickedCh:
				t.toggleTTS()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) toggleTTS() {
	t.mu.Lock()
	defer t.mu.Unlock()

	enabled := !t.session.TTSEnabled()
	t.session.SetTTSEnabled(enabled)
	t.ttsItem.SetTitle(ttsTitle(enabled))
}

func ttsTitle(enabled bool) string {
	if enabled {
		return "Spoken Replies: On"
	}
	return "Spoken Replies: Off"
}

// UpdateStatus reflects the session's analysis/editing state in the menu.
func (t *Tray) UpdateStatus() {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := t.session.Status()
	label := "Idle"
	switch {
	case status.Busy:
		label = "Editing"
	case status.Analysis == session.AnalysisRunning:
		label = "Analyzing"
	case status.ProjectID != "":
		label = "Ready: " + status.ProjectName
	}
	t.statusItem.SetTitle("Status: " + label)
}

func (t *Tray) UpdateProjectsCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.projectsItem.SetTitle(fmt.Sprintf("Projects: %d", count))
}

func (t *Tray) Quit() {
	systray.Quit()
}
