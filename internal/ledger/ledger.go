// Package ledger owns every change to a medication's stock level.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/cmas/internal/alerting"
	"github.com/erazemk/cmas/internal/model"
)

// ErrInvalidQuantity is returned for zero or negative quantities.
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// Repository applies stock changes atomically.
type Repository interface {
	ApplyUsage(ctx context.Context, rec *model.UsageRecord) (*model.Medication, error)
	Restock(ctx context.Context, id string, quantity int) (*model.Medication, error)
}

// Dispatcher is notified with the post-usage snapshot.
type Dispatcher interface {
	EvaluateAndDispatch(ctx context.Context, snapshot model.Medication) []alerting.Outcome
}

// Usage is a request to take stock out of inventory.
type Usage struct {
	MedicationID string
	Quantity     int
	UserID       string
	UserName     string
	Notes        string
}

// Result is the outcome of LogUsage.
type Result struct {
	Medication model.Medication
	Usage      model.UsageRecord
	Alerts     []alerting.Outcome
}

// Ledger applies usage and restock events.
type Ledger struct {
	repo       Repository
	dispatcher Dispatcher
	logger     *slog.Logger
}

// New creates a ledger. dispatcher may be nil, in which case usage is never
// evaluated for alerts.
func New(repo Repository, dispatcher Dispatcher, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{repo: repo, dispatcher: dispatcher, logger: logger}
}

// ApplyUsage decrements stock and records the usage. It fails with
// model.ErrNotFound or model.ErrInsufficientStock without writing anything.
func (l *Ledger) ApplyUsage(ctx context.Context, u Usage) (model.Medication, model.UsageRecord, error) {
	if u.Quantity <= 0 {
		return model.Medication{}, model.UsageRecord{}, ErrInvalidQuantity
	}

	rec := model.UsageRecord{
		MedicationID: u.MedicationID,
		QuantityUsed: u.Quantity,
		UserID:       u.UserID,
		UserName:     u.UserName,
		Notes:        u.Notes,
	}
	med, err := l.repo.ApplyUsage(ctx, &rec)
	if err != nil {
		return model.Medication{}, model.UsageRecord{}, err
	}

	l.logger.Info("usage recorded",
		"medication", med.ID,
		"quantity", u.Quantity,
		"stock", med.CurrentStock,
		"user", u.UserName,
	)
	return *med, rec, nil
}

// LogUsage applies usage and then evaluates the new stock level for alerts.
// Alert delivery never affects the returned error; the stock change is
// already committed by the time alerts go out, and dispatch runs to the end
// even if ctx is cancelled.
func (l *Ledger) LogUsage(ctx context.Context, u Usage) (Result, error) {
	med, rec, err := l.ApplyUsage(ctx, u)
	if err != nil {
		return Result{}, err
	}

	res := Result{Medication: med, Usage: rec}
	if l.dispatcher != nil {
		res.Alerts = l.dispatcher.EvaluateAndDispatch(ctx, med)
	}
	return res, nil
}

// Restock adds stock to a medication. It does not evaluate alerts.
func (l *Ledger) Restock(ctx context.Context, medicationID string, quantity int) (model.Medication, error) {
	if quantity <= 0 {
		return model.Medication{}, ErrInvalidQuantity
	}

	med, err := l.repo.Restock(ctx, medicationID, quantity)
	if err != nil {
		return model.Medication{}, fmt.Errorf("restocking %s: %w", medicationID, err)
	}
	if med == nil {
		return model.Medication{}, fmt.Errorf("restocking %s: %w", medicationID, model.ErrNotFound)
	}

	l.logger.Info("medication restocked", "medication", med.ID, "quantity", quantity, "stock", med.CurrentStock)
	return *med, nil
}
