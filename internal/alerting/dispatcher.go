// Package alerting evaluates medication snapshots after usage and notifies
// administrators when stock is low.
package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/cmas/internal/model"
)

// Sender delivers a message to a single phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) Delivery
}

// RecipientSource resolves the accounts that receive alerts.
type RecipientSource interface {
	ListUsersByRole(ctx context.Context, role string) ([]model.User, error)
}

// Recorder persists alert records.
type Recorder interface {
	CreateAlert(ctx context.Context, a *model.AlertRecord) error
}

// Publisher receives every alert record after it has been persisted.
type Publisher interface {
	Publish(ctx context.Context, a model.AlertRecord) error
}

// Outcome describes the notification attempt for one recipient.
type Outcome struct {
	UserID   string
	Username string
	Phone    string
	Delivery Delivery
	// AlertID is empty when the alert record could not be stored.
	AlertID string
}

// Status is the alert record status matching the delivery result.
func (o Outcome) Status() string {
	if o.Delivery.OK() {
		return model.AlertStatusSent
	}
	return model.AlertStatusFailed
}

// Config holds dispatcher settings.
type Config struct {
	CountryCode string
	// Concurrency bounds how many recipients are notified at once. Values
	// below 1 mean one at a time.
	Concurrency int
}

// Dispatcher fans a low-stock alert out to every administrator and keeps an
// audit record of each attempt.
type Dispatcher struct {
	sender      Sender
	recipients  RecipientSource
	recorder    Recorder
	publisher   Publisher
	countryCode string
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewDispatcher creates a dispatcher. publisher may be nil.
func NewDispatcher(cfg Config, sender Sender, recipients RecipientSource, recorder Recorder, publisher Publisher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		sender:      sender,
		recipients:  recipients,
		recorder:    recorder,
		publisher:   publisher,
		countryCode: normalizeCountryCode(cfg.CountryCode),
		concurrency: concurrency,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// EvaluateAndDispatch checks a post-usage snapshot and, if stock is at or
// below the threshold, notifies every administrator. It returns one outcome
// per recipient in resolution order and never fails: delivery and storage
// problems are logged and reflected in the outcomes.
func (d *Dispatcher) EvaluateAndDispatch(ctx context.Context, snapshot model.Medication) []Outcome {
	if !ShouldAlert(snapshot) {
		return nil
	}

	// The stock change is already committed; a caller going away must not
	// cut the fan-out short. Sends are bounded by the sender's own timeout.
	ctx = context.WithoutCancel(ctx)

	admins, err := d.recipients.ListUsersByRole(ctx, model.RoleAdmin)
	if err != nil {
		d.logger.Error("resolving alert recipients", "medication", snapshot.ID, "error", err)
		return nil
	}

	d.logger.Warn("medication stock low",
		"medication", snapshot.ID,
		"name", snapshot.Name,
		"stock", snapshot.CurrentStock,
		"threshold", snapshot.MinimumThreshold,
		"recipients", len(admins),
	)

	message := FormatMessage(snapshot)
	outcomes := make([]Outcome, len(admins))

	// Each goroutine writes only its own slot, so outcomes keep recipient order.
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, admin := range admins {
		g.Go(func() error {
			outcomes[i] = d.notify(ctx, snapshot, admin, message)
			return nil
		})
	}
	g.Wait()

	return outcomes
}

// notify sends to one recipient and stores the resulting alert record.
func (d *Dispatcher) notify(ctx context.Context, snapshot model.Medication, admin model.User, message string) Outcome {
	var phone string
	var delivery Delivery
	if strings.TrimSpace(admin.Phone) == "" {
		delivery = Failed(ReasonNoPhone)
	} else {
		phone = NormalizePhone(admin.Phone, d.countryCode)
		delivery = d.send(ctx, phone, message)
	}

	out := Outcome{
		UserID:   admin.ID,
		Username: admin.Username,
		Phone:    phone,
		Delivery: delivery,
	}

	if !delivery.OK() {
		d.logger.Error("alert delivery failed",
			"medication", snapshot.ID, "user", admin.Username, "phone", phone, "reason", delivery.Reason())
	}

	record := model.AlertRecord{
		MedicationID:     snapshot.ID,
		MedicationName:   snapshot.Name,
		CurrentStock:     snapshot.CurrentStock,
		MinimumThreshold: snapshot.MinimumThreshold,
		AlertType:        model.AlertTypeLowStock,
		Message:          message,
		RecipientID:      admin.ID,
		SentToPhone:      phone,
		Status:           out.Status(),
		Error:            delivery.Reason(),
		SentAt:           d.now(),
	}
	if err := d.store(ctx, &record); err != nil {
		d.logger.Error("storing alert record",
			"medication", snapshot.ID, "user", admin.Username, "error", err)
		return out
	}
	out.AlertID = record.ID

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, record); err != nil {
			d.logger.Error("publishing alert record", "alert", record.ID, "error", err)
		}
	}

	return out
}

// send calls the sender and turns a panic into a failed delivery.
func (d *Dispatcher) send(ctx context.Context, to, body string) (delivery Delivery) {
	defer func() {
		if r := recover(); r != nil {
			delivery = Failed(fmt.Sprintf("sender panic: %v", r))
		}
	}()
	return d.sender.Send(ctx, to, body)
}

func (d *Dispatcher) store(ctx context.Context, record *model.AlertRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recorder panic: %v", r)
		}
	}()
	return d.recorder.CreateAlert(ctx, record)
}
