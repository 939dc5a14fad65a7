package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"n"},
	Short:   "Manage local notifications",
	RunE:    runNotificationsList,
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	RunE:  runNotificationsList,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsRead,
}

var notificationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Mark a notification as deleted",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsDelete,
}

var flagUnreadOnly bool

func init() {
	notificationsListCmd.Flags().BoolVar(&flagUnreadOnly, "unread", false, "show only unread notifications")
	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsDeleteCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func runNotificationsList(cmd *cobra.Command, _ []string) error {
	if notificationCenter == nil {
		return errors.New("notification center not configured")
	}

	all := notificationCenter.List()

	shown := 0
	for _, n := range all {
		if n.IsDeleted {
			continue
		}
		if flagUnreadOnly && n.IsRead {
			continue
		}

		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		cmd.Printf("%s %s  %s  %s\n", marker, n.ID,
			n.DeliveredAt.Format("2006-01-02 15:04"), n.Title)
		shown++
	}

	if shown == 0 {
		cmd.Println("No notifications.")
		return nil
	}
	cmd.Printf("\n%d notification(s), %d unread.\n", shown, notificationCenter.UnreadCount())
	return nil
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	if notificationCenter == nil {
		return errors.New("notification center not configured")
	}

	if err := notificationCenter.MarkRead(args[0]); err != nil {
		return err
	}
	cmd.Printf("Notification %s marked read.\n", args[0])
	return nil
}

func runNotificationsDelete(cmd *cobra.Command, args []string) error {
	if notificationCenter == nil {
		return errors.New("notification center not configured")
	}

	if err := notificationCenter.MarkDeleted(args[0]); err != nil {
		return err
	}
	cmd.Printf("Notification %s deleted.\n", args[0])
	return nil
}
