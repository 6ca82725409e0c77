package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/cmas/internal/model"
)

// GetDashboardStats aggregates stock levels with the latest alerts and usage.
func GetDashboardStats(ctx context.Context, db *sql.DB) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN current_stock <= minimum_threshold THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN current_stock = 0 THEN 1 ELSE 0 END), 0)
		 FROM medications WHERE deleted_at IS NULL`,
	).Scan(&stats.TotalMedications, &stats.LowStockCount, &stats.CriticalStockCount)
	if err != nil {
		return nil, fmt.Errorf("counting medications: %w", err)
	}

	stats.RecentAlerts, err = ListAlerts(ctx, db, 5)
	if err != nil {
		return nil, err
	}
	if stats.RecentAlerts == nil {
		stats.RecentAlerts = []model.AlertRecord{}
	}

	stats.RecentUsage, err = ListUsage(ctx, db, 10)
	if err != nil {
		return nil, err
	}
	if stats.RecentUsage == nil {
		stats.RecentUsage = []model.UsageRecord{}
	}

	return stats, nil
}
