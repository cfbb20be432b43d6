// Package launcher hands recognized external links off to the
// platform's URL-open capability.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
)

// Launcher opens external deep links and URLs outside the dispatch
// pipeline.
type Launcher interface {
	// LaunchDeepLink hands a recognized external link to the platform.
	LaunchDeepLink(ctx context.Context, link *domain.DeepLink) error

	// OpenURL opens a URL with the platform's default handler.
	OpenURL(ctx context.Context, rawURL string) error
}

// ExecLauncher shells out to the OS URL opener.
type ExecLauncher struct{}

func (ExecLauncher) LaunchDeepLink(ctx context.Context, link *domain.DeepLink) error {
	return ExecLauncher{}.OpenURL(ctx, link.Raw)
}

func (ExecLauncher) OpenURL(ctx context.Context, rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", rawURL)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", rawURL)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("open url: %w", err)
	}
	return nil
}

// LogLauncher records launches without performing them; the headless
// default when no platform opener is available.
type LogLauncher struct {
	log *slog.Logger
}

func NewLogLauncher(log *slog.Logger) *LogLauncher {
	if log == nil {
		log = slog.Default()
	}
	return &LogLauncher{log: log}
}

func (l *LogLauncher) LaunchDeepLink(ctx context.Context, link *domain.DeepLink) error {
	l.log.Info("deep link handoff", "type", link.Type, "raw", link.Raw)
	return nil
}

func (l *LogLauncher) OpenURL(ctx context.Context, rawURL string) error {
	l.log.Info("url open", "url", rawURL)
	return nil
}
