// Package tui is the interactive full-screen view over state.App.
package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tasker/internal/config"
	"tasker/internal/logger"
	"tasker/internal/state"
)

// Run takes over the terminal until the user quits. Logging moves to
// the log file for the duration, so it cannot tear the screen.
func Run(ctx context.Context, cfg *config.Config, app *state.App) error {
	if err := cfg.EnsureDir(); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	logger.SetOutput(f)
	defer logger.SetOutput(os.Stderr)
	logger.Info("tui started", "api", cfg.APIURL)

	applyColorProfile()

	m := newModel(ctx, app)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
