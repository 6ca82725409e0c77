package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/cmas/internal/alerting"
	"github.com/erazemk/cmas/internal/logging"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a single SMS through the configured channel",
	RunE:  runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().String("to", "", "recipient phone number")
	notifyCmd.Flags().String("message", "This is a test alert from the Clinic Medication Availability System.", "message body")
	notifyCmd.MarkFlagRequired("to")
}

func runNotify(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}

	to, _ := cmd.Flags().GetString("to")
	message, _ := cmd.Flags().GetString("message")
	phone := alerting.NormalizePhone(to, cfg.Alerts.CountryCode)

	delivery := sender.Send(cmd.Context(), phone, message)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", phone, delivery)
	if !delivery.OK() {
		return fmt.Errorf("delivery to %s failed", phone)
	}
	return nil
}
