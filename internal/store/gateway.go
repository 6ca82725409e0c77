package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/cmas/internal/model"
)

// Gateway exposes the store functions as methods over one database handle, so
// the ledger and the alert dispatcher can depend on narrow interfaces.
type Gateway struct {
	db *sql.DB
}

// NewGateway wraps db.
func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

// ApplyUsage implements ledger.Repository.
func (g *Gateway) ApplyUsage(ctx context.Context, rec *model.UsageRecord) (*model.Medication, error) {
	return ApplyUsage(ctx, g.db, rec)
}

// Restock implements ledger.Repository.
func (g *Gateway) Restock(ctx context.Context, id string, quantity int) (*model.Medication, error) {
	return Restock(ctx, g.db, id, quantity)
}

// ListUsersByRole implements alerting.RecipientSource.
func (g *Gateway) ListUsersByRole(ctx context.Context, role string) ([]model.User, error) {
	return ListUsersByRole(ctx, g.db, role)
}

// CreateAlert implements alerting.Recorder.
func (g *Gateway) CreateAlert(ctx context.Context, a *model.AlertRecord) error {
	return CreateAlert(ctx, g.db, a)
}
