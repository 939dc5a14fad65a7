package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cfgfile "github.com/lumen-labs/engagekit/internal/adapters/driven/config/file"
	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the background sync scheduler",
	Long: `Starts the recurring sync scheduler and blocks until interrupted.
The settings file is watched; edits apply without a restart where
possible.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	if syncScheduler == nil {
		return errors.New("scheduler not configured")
	}
	if err := requireEndpoint(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := cfgfile.NewWatcher(settingsStore, eventQueue)
	if err != nil {
		logger.Warn("config watcher unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	sub, err := eventQueue.Subscribe(0)
	if err != nil {
		return err
	}
	defer sub.Cancel()
	go applyConfigChanges(ctx, sub.C)

	cmd.Printf("Scheduler running, syncing every %s. Ctrl-C to stop.\n", appSettings.SyncInterval)

	if err := syncScheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return syncScheduler.Stop()
}

// applyConfigChanges reacts to settings file edits while running.
// Only the verbose flag applies live; the rest needs a restart.
func applyConfigChanges(ctx context.Context, events <-chan any) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			changed, ok := event.(domain.ConfigChangedEvent)
			if !ok {
				continue
			}
			logger.SetVerbose(changed.Settings.Verbose || flagVerbose)
			logger.Info("settings reloaded")
		}
	}
}
