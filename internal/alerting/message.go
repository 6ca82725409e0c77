package alerting

import (
	"fmt"

	"github.com/erazemk/cmas/internal/model"
)

// ShouldAlert reports whether a post-usage snapshot is at or below its
// minimum threshold.
func ShouldAlert(m model.Medication) bool {
	return m.LowStock()
}

// FormatMessage renders the low-stock SMS body for a medication snapshot.
func FormatMessage(m model.Medication) string {
	return fmt.Sprintf(
		"MEDICATION ALERT: %s is running low! Current stock: %d %s. Minimum required: %d %s. Please reorder immediately.",
		m.Name, m.CurrentStock, m.Unit, m.MinimumThreshold, m.Unit,
	)
}
