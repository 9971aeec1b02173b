package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobscout-za/jobscout/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification utilities",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a sample listing to the configured Slack webhook",
	RunE:  runNotifyTest,
}

func init() {
	notifyCmd.AddCommand(notifyTestCmd)
	rootCmd.AddCommand(notifyCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stderr)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	if cfg.Notification.Type != "slack" {
		return fmt.Errorf("notification.type is %q; set it to slack with a webhook_url to test", cfg.Notification.Type)
	}

	slack := notifier.NewSlackNotifier(cfg.Notification.WebhookURL, notifierClient(), logger)
	if err := notifier.SendTestMessage(slack); err != nil {
		return fmt.Errorf("sending test message: %w", err)
	}

	fmt.Println("Test message sent.")
	return nil
}
