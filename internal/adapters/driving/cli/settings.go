package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	cmd.Printf("Config file:        %s\n", settingsStore.Path())
	cmd.Printf("Endpoint:           %s\n", appSettings.Endpoint)
	cmd.Printf("Account token:      %s\n", redactToken(appSettings.AccountToken))
	cmd.Printf("Page size:          %d\n", appSettings.PageSize)
	cmd.Printf("Max notifications:  %d\n", appSettings.MaxNotifications)
	cmd.Printf("Sync interval:      %s\n", appSettings.SyncInterval)
	cmd.Printf("Request timeout:    %s\n", appSettings.RequestTimeout)
	cmd.Printf("Verbose:            %t\n", appSettings.Verbose)
	return nil
}

// redactToken shows only the last four characters of a token.
func redactToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
