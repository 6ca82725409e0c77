package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/cmas/internal/alerting"
	"github.com/erazemk/cmas/internal/db"
	"github.com/erazemk/cmas/internal/model"
	"github.com/erazemk/cmas/internal/store"
)

type stubSender struct {
	to []string
}

func (s *stubSender) Send(_ context.Context, to, _ string) alerting.Delivery {
	s.to = append(s.to, to)
	if to == "+27830000000" {
		return alerting.Failed("number unreachable")
	}
	return alerting.Delivered()
}

// TestUsageToAlertRecords runs a usage event through the real store and
// dispatcher and checks the persisted audit trail.
func TestUsageToAlertRecords(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	store.CreateUser(ctx, database, "admin1", "x", model.RoleAdmin, "0821234567")
	store.CreateUser(ctx, database, "admin2", "x", model.RoleAdmin, "0830000000")
	store.CreateUser(ctx, database, "nurse1", "x", model.RoleNurse, "0849999999")
	med, err := store.CreateMedication(ctx, database, "Paracetamol", 25, 20, "tablets", "")
	require.NoError(t, err)

	gw := store.NewGateway(database)
	sender := &stubSender{}
	dispatcher := alerting.NewDispatcher(alerting.Config{CountryCode: "+27"}, sender, gw, gw, nil, discard)
	l := New(gw, dispatcher, discard)

	res, err := l.LogUsage(ctx, Usage{MedicationID: med.ID, Quantity: 5, UserID: "n1", UserName: "nurse1"})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Medication.CurrentStock)
	require.Len(t, res.Alerts, 2)

	assert.Equal(t, []string{"+27821234567", "+27830000000"}, sender.to)

	alerts, err := store.ListAlerts(ctx, database, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	byPhone := map[string]model.AlertRecord{}
	for _, a := range alerts {
		byPhone[a.SentToPhone] = a
	}
	assert.Equal(t, model.AlertStatusSent, byPhone["+27821234567"].Status)
	assert.Equal(t, model.AlertStatusFailed, byPhone["+27830000000"].Status)
	assert.Equal(t, "number unreachable", byPhone["+27830000000"].Error)
	assert.Contains(t, byPhone["+27821234567"].Message, "Current stock: 20 tablets")

	// Stock above threshold: no new alerts.
	store.Restock(ctx, database, med.ID, 10)
	res, err = l.LogUsage(ctx, Usage{MedicationID: med.ID, Quantity: 1, UserID: "n1", UserName: "nurse1"})
	require.NoError(t, err)
	assert.Equal(t, 29, res.Medication.CurrentStock)
	assert.Empty(t, res.Alerts)

	alerts, _ = store.ListAlerts(ctx, database, 0)
	assert.Len(t, alerts, 2)

	// Rejected usage leaves every collection untouched.
	_, err = l.LogUsage(ctx, Usage{MedicationID: med.ID, Quantity: 30, UserID: "n1", UserName: "nurse1"})
	require.ErrorIs(t, err, model.ErrInsufficientStock)
	usage, _ := store.ListUsage(ctx, database, 0)
	assert.Len(t, usage, 2)
	alerts, _ = store.ListAlerts(ctx, database, 0)
	assert.Len(t, alerts, 2)
}

type hangupSender struct {
	hangup context.CancelFunc
}

func (s hangupSender) Send(context.Context, string, string) alerting.Delivery {
	s.hangup()
	return alerting.Delivered()
}

// TestLogUsageKeepsAuditTrailAfterHangup cancels the request context while
// the first SMS is in flight; every admin must still get an alert record.
func TestLogUsageKeepsAuditTrailAfterHangup(t *testing.T) {
	database := db.NewTestDB(t)
	setupCtx := context.Background()

	store.CreateUser(setupCtx, database, "admin1", "x", model.RoleAdmin, "0821234567")
	store.CreateUser(setupCtx, database, "admin2", "x", model.RoleAdmin, "0831112222")
	med, err := store.CreateMedication(setupCtx, database, "Paracetamol", 25, 20, "tablets", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(setupCtx)
	defer cancel()

	gw := store.NewGateway(database)
	dispatcher := alerting.NewDispatcher(alerting.Config{CountryCode: "+27"}, hangupSender{hangup: cancel}, gw, gw, nil, discard)
	l := New(gw, dispatcher, discard)

	res, err := l.LogUsage(ctx, Usage{MedicationID: med.ID, Quantity: 5, UserID: "n1", UserName: "nurse1"})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Medication.CurrentStock)
	require.Len(t, res.Alerts, 2)
	for _, o := range res.Alerts {
		assert.True(t, o.Delivery.OK())
		assert.NotEmpty(t, o.AlertID)
	}

	alerts, err := store.ListAlerts(setupCtx, database, 0)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}
