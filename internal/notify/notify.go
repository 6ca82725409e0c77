// Package notify implements the SMS channels alerts are delivered through.
package notify

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/cmas/internal/alerting"
)

// Drivers.
const (
	DriverLog     = "log"
	DriverTwilio  = "twilio"
	DriverWebhook = "webhook"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

// Config selects and configures a channel.
type Config struct {
	Driver  string
	Timeout time.Duration
	Twilio  TwilioConfig
	Webhook WebhookConfig
}

// New builds the sender for cfg.Driver.
func New(cfg Config, logger *slog.Logger) (alerting.Sender, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch cfg.Driver {
	case "", DriverLog:
		return NewLogSender(logger), nil
	case DriverTwilio:
		return NewTwilioSender(cfg.Twilio, timeout)
	case DriverWebhook:
		return NewWebhookSender(cfg.Webhook.URL, cfg.Webhook.Secret, timeout)
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}
