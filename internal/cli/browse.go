package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/glorpus-work/modpick/internal/logger"
	"github.com/glorpus-work/modpick/internal/tui"
	"github.com/glorpus-work/modpick/pkg/browser"
	"github.com/glorpus-work/modpick/pkg/config"
	"github.com/glorpus-work/modpick/pkg/fsutil"
	"github.com/glorpus-work/modpick/pkg/session"
	"github.com/spf13/cobra"
)

// NewBrowseCmd creates the browse command.
func NewBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse and install mods interactively",
		Long: `Open the interactive mod browser.

LEFT/RIGHT page through the mods, ENTER installs the shown mod,
1 opens its repository page, 2 reloads the mod list and ESC leaves.
Log output goes to a file in the cache directory while the browser runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(contextOrBackground(cmd.Context()))
		},
	}

	return cmd
}

func runBrowse(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	restore, err := redirectLogs(cfg)
	if err != nil {
		return err
	}
	defer restore()

	client := loadClient(cfg)
	menu := tui.NewMenu()

	var program *tea.Program
	ctrl := session.NewController(
		loadFetcher(cfg, client),
		loadOrchestrator(cfg, client, logHooks()),
		browser.NewOpener(),
		menu,
		session.Options{
			ErrorDelay:    cfg.Settings.ErrorDelay,
			BrowseBaseURL: cfg.Settings.BrowseBaseURL,
			OnChange: func() {
				// Send returns once the program has stopped, so this never blocks for good.
				if program != nil {
					program.Send(tui.ChangedMsg{})
				}
			},
		},
	)

	// Runs before restore: an install started from the browser may still be
	// writing to the log file after the program exits.
	defer func() {
		timeout := cfg.Settings.HTTPTimeout
		if timeout <= 0 {
			timeout = config.DefaultHTTPTimeout
		}
		if !waitIdle(ctrl, timeout, idlePollInterval) {
			logger.Warn("Leaving browser with an install still running", logger.Fields{"waited": timeout.String()})
		}
	}()

	program = tea.NewProgram(tui.New(ctx, ctrl, menu), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("browser failed: %w", err)
	}

	logger.Debug("Browser closed", logger.Fields{"returned_to_menu": menu.Returned()})
	return nil
}

const idlePollInterval = 50 * time.Millisecond

// waitIdle polls b until it is no longer busy or timeout elapses. It reports
// whether b went idle.
func waitIdle(b interface{ Busy() bool }, timeout, interval time.Duration) bool {
	if !b.Busy() {
		return true
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-deadline.C:
			return !b.Busy()
		case <-tick.C:
			if !b.Busy() {
				return true
			}
		}
	}
}

// redirectLogs points the logger at the log file so records do not tear the
// terminal UI. The returned func restores stderr output.
func redirectLogs(cfg *config.Config) (func(), error) {
	path, err := cfg.GetLogFile()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare log file: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fsutil.FileModeSecure)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logger.SetOutput(file)
	initLogging(cfg)
	logger.Debug("Browser started", logger.Fields{"log_file": path})

	return func() {
		logger.SetOutput(nil)
		initLogging(cfg)
		_ = file.Close()
	}, nil
}
