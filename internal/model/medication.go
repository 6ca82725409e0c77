package model

import "time"

// Medication is a stocked medication and its reorder threshold.
type Medication struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	CurrentStock     int        `json:"current_stock"`
	MinimumThreshold int        `json:"minimum_threshold"`
	Unit             string     `json:"unit"`
	Description      string     `json:"description,omitempty"`
	ImageMime        string     `json:"image_mime,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

// LowStock reports whether the stock is at or below the minimum threshold.
func (m Medication) LowStock() bool {
	return m.CurrentStock <= m.MinimumThreshold
}

// UsageRecord is an immutable log entry of medication dispensed by a staff member.
type UsageRecord struct {
	ID             string    `json:"id"`
	MedicationID   string    `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	QuantityUsed   int       `json:"quantity_used"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	Timestamp      time.Time `json:"timestamp"`
	Notes          string    `json:"notes,omitempty"`
}

// DashboardStats summarizes inventory health for the dashboard.
type DashboardStats struct {
	TotalMedications   int           `json:"total_medications"`
	LowStockCount      int           `json:"low_stock_count"`
	CriticalStockCount int           `json:"critical_stock_count"`
	RecentAlerts       []AlertRecord `json:"recent_alerts"`
	RecentUsage        []UsageRecord `json:"recent_usage"`
}
