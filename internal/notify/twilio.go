package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/erazemk/cmas/internal/alerting"
)

const twilioBaseURL = "https://api.twilio.com"

// TwilioConfig holds Twilio account credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	// BaseURL overrides the API host, mainly for tests.
	BaseURL string
}

// TwilioSender sends SMS through the Twilio Messages API.
type TwilioSender struct {
	client *resty.Client
	sid    string
	from   string
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewTwilioSender creates a Twilio sender. Every request is bounded by timeout.
func NewTwilioSender(cfg TwilioConfig, timeout time.Duration) (*TwilioSender, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, errors.New("twilio account_sid, auth_token and from are required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = twilioBaseURL
	}

	client := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &TwilioSender{client: client, sid: cfg.AccountSID, from: cfg.From}, nil
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) alerting.Delivery {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("sid", s.sid).
		SetFormData(map[string]string{
			"To":   to,
			"From": s.from,
			"Body": body,
		}).
		SetResult(&twilioMessage{}).
		SetError(&twilioError{}).
		Post("/2010-04-01/Accounts/{sid}/Messages.json")
	if err != nil {
		return alerting.Failed(fmt.Sprintf("twilio request: %v", err))
	}

	if resp.IsError() {
		if e, ok := resp.Error().(*twilioError); ok && e.Message != "" {
			return alerting.Failed(fmt.Sprintf("twilio status %d: %s (code %d)", resp.StatusCode(), e.Message, e.Code))
		}
		return alerting.Failed(fmt.Sprintf("twilio status %d", resp.StatusCode()))
	}

	return alerting.Delivered()
}
