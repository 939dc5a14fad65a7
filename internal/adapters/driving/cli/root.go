// Package cli provides the cobra command-line interface for engagekit.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgfile "github.com/lumen-labs/engagekit/internal/adapters/driven/config/file"
	storefile "github.com/lumen-labs/engagekit/internal/adapters/driven/storage/file"
	"github.com/lumen-labs/engagekit/internal/adapters/driven/storage/sqlite"
	"github.com/lumen-labs/engagekit/internal/cache"
	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
	"github.com/lumen-labs/engagekit/internal/core/ports/driving"
	"github.com/lumen-labs/engagekit/internal/core/services"
	"github.com/lumen-labs/engagekit/internal/eventqueue"
	"github.com/lumen-labs/engagekit/internal/graphql"
	"github.com/lumen-labs/engagekit/internal/logger"
	"github.com/lumen-labs/engagekit/internal/participants/beacons"
	"github.com/lumen-labs/engagekit/internal/participants/campaigns"
	"github.com/lumen-labs/engagekit/internal/participants/geofences"
	"github.com/lumen-labs/engagekit/internal/participants/notifications"
)

// campaignFreshnessSize bounds the campaign revision cache.
const campaignFreshnessSize = 512

// version is set at build time via ldflags.
var version = "dev"

// Persistent flags.
var (
	flagConfigDir string
	flagDataDir   string
	flagVerbose   bool
)

// Wired services, populated by initApp before a command runs.
var (
	appSettings        domain.Settings
	settingsStore      *cfgfile.SettingsStore
	eventQueue         *eventqueue.Queue
	syncCoordinator    driving.SyncCoordinator
	notificationCenter driving.NotificationCenter
	syncScheduler      *services.Scheduler
	closers            []func() error
)

var rootCmd = &cobra.Command{
	Use:   "engagekit",
	Short: "Engagement state sync for the backend-driven SDK",
	Long: `engagekit keeps local engagement state in step with the backend:
notifications, geofences, beacons, and campaigns are paged down over
GraphQL and merged into durable local stores.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.engagekit)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.engagekit/data)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// initApp wires the service graph. Commands that need no services
// (version, help) skip it.
func initApp(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	var err error
	settingsStore, err = cfgfile.NewSettingsStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}

	appSettings, err = settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if flagVerbose {
		appSettings.Verbose = true
	}
	logger.SetVerbose(appSettings.Verbose)

	prefs, err := cfgfile.NewPrefsStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening preferences: %w", err)
	}

	notificationCache, err := storefile.NewNotificationCache("")
	if err != nil {
		return fmt.Errorf("opening notification cache: %w", err)
	}

	store, err := sqlite.NewStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	closers = append(closers, store.Close)

	eventQueue = eventqueue.New()

	client := graphql.NewClient(appSettings.Endpoint, appSettings.AccountToken, appSettings.RequestTimeout)
	tracker := graphql.NewTracker(client)
	closers = append(closers, tracker.Close)

	center := services.NewNotificationCenter(
		appSettings.MaxNotifications, notificationCache, prefs, tracker, eventQueue)
	if err := center.Restore(); err != nil {
		return fmt.Errorf("restoring notifications: %w", err)
	}
	notificationCenter = center

	participants := []driven.SyncParticipant{
		notifications.New(center, appSettings.PageSize),
		geofences.New(store.GeofenceStore(), appSettings.PageSize),
		beacons.New(store.BeaconStore(), appSettings.PageSize),
		campaigns.New(store.CampaignStore(), cache.NewLRU(campaignFreshnessSize), appSettings.PageSize),
	}

	pager := services.NewPager(client, prefs)
	syncCoordinator = services.NewCoordinator(pager, participants, eventQueue)
	syncScheduler = services.NewScheduler(appSettings.SyncInterval, store.SchedulerStore(), syncCoordinator)

	return nil
}

// shutdown flushes and closes wired resources in reverse order.
func shutdown() error {
	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	closers = nil

	if eventQueue != nil {
		eventQueue.Close()
	}
	return firstErr
}

// requireEndpoint errors when no backend endpoint is configured.
func requireEndpoint() error {
	if appSettings.Endpoint == "" {
		return fmt.Errorf("no endpoint configured: set endpoint in %s", settingsStore.Path())
	}
	return nil
}
