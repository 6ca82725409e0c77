package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/erazemk/cmas/internal/alerting"
)

// WebhookConfig configures the generic HTTP channel.
type WebhookConfig struct {
	URL    string
	Secret string
}

// WebhookSender posts messages as JSON to an SMS gateway webhook.
// If a secret is set, requests are signed with HMAC-SHA256.
type WebhookSender struct {
	client *resty.Client
	url    string
	secret string
}

type webhookPayload struct {
	Event     string `json:"event"`
	To        string `json:"to"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

func NewWebhookSender(url, secret string, timeout time.Duration) (*WebhookSender, error) {
	if url == "" {
		return nil, errors.New("webhook url is required")
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "cmas/1.0")

	return &WebhookSender{client: client, url: url, secret: secret}, nil
}

func (w *WebhookSender) Send(ctx context.Context, to, body string) alerting.Delivery {
	payload, err := json.Marshal(webhookPayload{
		Event:     "sms",
		To:        to,
		Body:      body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return alerting.Failed(fmt.Sprintf("marshal webhook payload: %v", err))
	}

	req := w.client.R().SetContext(ctx).SetBody(payload)
	if w.secret != "" {
		req.SetHeader("X-Signature-256", "sha256="+Sign(payload, w.secret))
	}

	resp, err := req.Post(w.url)
	if err != nil {
		return alerting.Failed(fmt.Sprintf("webhook request: %v", err))
	}
	if resp.IsError() {
		return alerting.Failed(fmt.Sprintf("webhook status %d", resp.StatusCode()))
	}
	return alerting.Delivered()
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
