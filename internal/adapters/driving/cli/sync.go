package cli

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass",
	Long: `Runs a single sync pass across all participants and reports each
participant's terminal result.`,
	RunE: runSync,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncCoordinator == nil {
		return errors.New("sync coordinator not configured")
	}
	if err := requireEndpoint(); err != nil {
		return err
	}

	cmd.Println("Starting sync pass...")

	result, err := syncCoordinator.Sync(cmd.Context())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(result.Results))
	for name := range result.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd.Printf("  %-15s %s\n", name, result.Results[name])
	}

	if !result.Succeeded() {
		return errors.New("sync pass completed with failures")
	}
	cmd.Println("Sync pass complete.")
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncCoordinator == nil {
		return errors.New("sync coordinator not configured")
	}

	status := syncCoordinator.Status()
	cmd.Printf("Running: %t\n", status.Running)
	cmd.Printf("Pending: %t\n", status.Pending)

	if status.LastResult == nil {
		cmd.Println("No completed pass yet.")
		return nil
	}

	cmd.Printf("Last pass: %s (succeeded=%t)\n",
		status.LastResult.CompletedAt.Format("2006-01-02 15:04:05"),
		status.LastResult.Succeeded())
	return nil
}
