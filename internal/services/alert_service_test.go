package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/database/testutil"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
)

func newAlertService(t *testing.T, db *gorm.DB) *AlertService {
	t.Helper()
	svc, err := NewAlertService(db, AlertServiceConfig{})
	require.NoError(t, err)
	return svc
}

func TestEvaluateWarningCrossing(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)
	ctx := context.Background()

	// 85% of budget: nothing due yet
	created, err := svc.Evaluate(ctx, EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Maize",
		TotalSpent: 8500, PlannedBudget: 10000,
	})
	require.NoError(t, err)
	require.Empty(t, created)

	// crossing to 95% creates exactly one warning
	created, err = svc.Evaluate(ctx, EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Maize",
		TotalSpent: 9500, PlannedBudget: 10000,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	alert := created[0]
	require.Equal(t, models.AlertTypeWarning, alert.AlertType)
	require.Equal(t, 90.0, alert.Threshold)
	require.Equal(t, 9500.0, alert.Amount)
	require.Equal(t, 10000.0, alert.Budget)
	require.InDelta(t, 95.0, alert.BudgetUsage, 1e-9)
	require.Contains(t, alert.Message, "95.0%")
}

func TestEvaluateSuppressesDuplicateWarning(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)
	ctx := context.Background()

	input := EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Maize",
		TotalSpent: 9500, PlannedBudget: 10000,
	}
	created, err := svc.Evaluate(ctx, input)
	require.NoError(t, err)
	require.Len(t, created, 1)

	// usage climbs to 96% while the warning is still undismissed
	input.TotalSpent = 9600
	created, err = svc.Evaluate(ctx, input)
	require.NoError(t, err)
	require.Empty(t, created)

	undismissed, err := svc.FindUndismissed(ctx, "user-1", "crop-1")
	require.NoError(t, err)
	require.Len(t, undismissed, 1)
}

func TestEvaluateAfterDismissCreatesFreshAlert(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)
	ctx := context.Background()

	input := EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Maize",
		TotalSpent: 9500, PlannedBudget: 10000,
	}
	created, err := svc.Evaluate(ctx, input)
	require.NoError(t, err)
	require.Len(t, created, 1)

	_, err = svc.Dismiss(ctx, "user-1", created[0].ID)
	require.NoError(t, err)

	// usage never dropped below 90, but dismissal re-arms the rule
	input.TotalSpent = 9600
	created, err = svc.Evaluate(ctx, input)
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, models.AlertTypeWarning, created[0].AlertType)
}

func TestEvaluateJumpSkipsWarning(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)
	ctx := context.Background()

	// 80% -> 150% in a single write: warning window [90,100) is skipped
	created, err := svc.Evaluate(ctx, EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Beans",
		TotalSpent: 1500, PlannedBudget: 1000,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	alert := created[0]
	require.Equal(t, models.AlertTypeOverBudget, alert.AlertType)
	require.Equal(t, 100.0, alert.Threshold)
	require.Contains(t, alert.Message, "500.00")
}

func TestEvaluateOverBudgetMessageOverage(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)

	created, err := svc.Evaluate(context.Background(), EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Rice",
		TotalSpent: 12000, PlannedBudget: 10000,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.InDelta(t, 120.0, created[0].BudgetUsage, 1e-9)
	require.Contains(t, created[0].Message, "2000.00")
}

func TestEvaluateCustomAndOverBudgetTogether(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)

	custom := 80.0
	created, err := svc.Evaluate(context.Background(), EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Wheat",
		TotalSpent: 1200, PlannedBudget: 1000,
		CustomThreshold: &custom,
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	types := []string{created[0].AlertType, created[1].AlertType}
	require.Contains(t, types, models.AlertTypeOverBudget)
	require.Contains(t, types, models.AlertTypeCustomThreshold)
	require.NotContains(t, types, models.AlertTypeWarning)

	for _, alert := range created {
		if alert.AlertType == models.AlertTypeCustomThreshold {
			require.Equal(t, 80.0, alert.Threshold)
			require.NotNil(t, alert.CustomThreshold)
		}
	}
}

func TestEvaluateExactBoundariesInclusive(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)
	ctx := context.Background()

	// exactly 90% fires the warning
	created, err := svc.Evaluate(ctx, EvaluateInput{
		UserID: "user-1", CropID: "crop-90", CropName: "Maize",
		TotalSpent: 900, PlannedBudget: 1000,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, models.AlertTypeWarning, created[0].AlertType)

	// exactly 100% fires over-budget, not warning
	created, err = svc.Evaluate(ctx, EvaluateInput{
		UserID: "user-1", CropID: "crop-100", CropName: "Maize",
		TotalSpent: 1000, PlannedBudget: 1000,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, models.AlertTypeOverBudget, created[0].AlertType)
}

func TestEvaluateRejectsInvalidBudget(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)

	_, err := svc.Evaluate(context.Background(), EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Maize",
		TotalSpent: 100, PlannedBudget: 0,
	})
	require.ErrorIs(t, err, ErrInvalidBudget)
}

func TestCreatedAlertRecordsDelivery(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)

	created, err := svc.Evaluate(context.Background(), EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Maize",
		TotalSpent: 950, PlannedBudget: 1000,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	var deliveries []models.AlertDelivery
	require.NoError(t, json.Unmarshal(created[0].SentVia, &deliveries))
	require.Len(t, deliveries, 1)
	require.Equal(t, models.DeliveryMethodInApp, deliveries[0].Method)
	require.Equal(t, models.DeliveryStatusSent, deliveries[0].Status)
	require.False(t, deliveries[0].SentAt.IsZero())
}

func TestListForUserFilters(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)
	ctx := context.Background()

	created, err := svc.Evaluate(ctx, EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Maize",
		TotalSpent: 1200, PlannedBudget: 1000,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	more, err := svc.Evaluate(ctx, EvaluateInput{
		UserID: "user-1", CropID: "crop-2", CropName: "Beans",
		TotalSpent: 950, PlannedBudget: 1000,
	})
	require.NoError(t, err)
	require.Len(t, more, 1)

	all, err := svc.ListForUser(ctx, ListAlertsInput{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, all, 2)

	// reading one and filtering to unread leaves the other
	_, err = svc.MarkRead(ctx, "user-1", created[0].ID)
	require.NoError(t, err)

	unread, err := svc.ListForUser(ctx, ListAlertsInput{UserID: "user-1", UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)

	// dismissal hides from the default listing but keeps the record
	_, err = svc.Dismiss(ctx, "user-1", more[0].ID)
	require.NoError(t, err)

	visible, err := svc.ListForUser(ctx, ListAlertsInput{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, visible, 1)

	withDismissed, err := svc.ListForUser(ctx, ListAlertsInput{UserID: "user-1", IncludeDismissed: true})
	require.NoError(t, err)
	require.Len(t, withDismissed, 2)
}

func TestMarkReadUnknownAlert(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)

	_, err := svc.MarkRead(context.Background(), "user-1", "missing")
	require.Error(t, err)
}

func TestDeleteAlertScopedToOwner(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)
	ctx := context.Background()

	created, err := svc.Evaluate(ctx, EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Maize",
		TotalSpent: 950, PlannedBudget: 1000,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	require.Error(t, svc.Delete(ctx, "user-2", created[0].ID))
	require.NoError(t, svc.Delete(ctx, "user-1", created[0].ID))
}

func TestCountUndismissed(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAlertService(t, db)
	ctx := context.Background()

	created, err := svc.Evaluate(ctx, EvaluateInput{
		UserID: "user-1", CropID: "crop-1", CropName: "Maize",
		TotalSpent: 1500, PlannedBudget: 1000,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	count, err := svc.CountUndismissed(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	_, err = svc.Dismiss(ctx, "user-1", created[0].ID)
	require.NoError(t, err)

	count, err = svc.CountUndismissed(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}
