package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/database/testutil"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
)

func newCropService(t *testing.T, db *gorm.DB) *CropService {
	t.Helper()
	svc, err := NewCropService(db, newAlertService(t, db))
	require.NoError(t, err)
	return svc
}

func seedExpense(t *testing.T, db *gorm.DB, userID, cropID string, amount float64) {
	t.Helper()
	expense := models.Expense{
		UserID: userID,
		CropID: &cropID,
		Title:  "seed",
		Amount: amount,
	}
	require.NoError(t, db.Create(&expense).Error)
}

func TestCropCreateRejectsNonPositiveBudget(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCropService(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCropInput{UserID: "user-1", Name: "Maize", PlannedBudget: 0})
	require.ErrorIs(t, err, ErrInvalidBudget)

	_, err = svc.Create(ctx, CreateCropInput{UserID: "user-1", Name: "Maize", PlannedBudget: -50})
	require.ErrorIs(t, err, ErrInvalidBudget)

	crop, err := svc.Create(ctx, CreateCropInput{UserID: "user-1", Name: "Maize", PlannedBudget: 10000})
	require.NoError(t, err)
	require.NotEmpty(t, crop.ID)
	require.Nil(t, crop.CustomThreshold)
}

func TestCropFindByNameIsCaseSensitive(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCropService(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCropInput{UserID: "user-1", Name: "Maize", PlannedBudget: 1000})
	require.NoError(t, err)

	found, err := svc.FindByName(ctx, "user-1", "Maize")
	require.NoError(t, err)
	require.Equal(t, "Maize", found.Name)

	_, err = svc.FindByName(ctx, "user-1", "maize")
	require.ErrorIs(t, err, ErrCropNotFound)

	// names resolve per owner
	_, err = svc.FindByName(ctx, "user-2", "Maize")
	require.ErrorIs(t, err, ErrCropNotFound)
}

func TestSetCustomThresholdEvaluatesImmediately(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCropService(t, db)
	ctx := context.Background()

	crop, err := svc.Create(ctx, CreateCropInput{UserID: "user-1", Name: "Maize", PlannedBudget: 10000})
	require.NoError(t, err)

	// usage already at 75% before the threshold exists
	seedExpense(t, db, "user-1", crop.ID, 7500)

	result, err := svc.SetCustomThreshold(ctx, "user-1", crop.ID, 70)
	require.NoError(t, err)
	require.NoError(t, result.AlertErr)
	require.NotNil(t, result.Crop.CustomThreshold)
	require.Equal(t, 70.0, *result.Crop.CustomThreshold)

	require.Len(t, result.Alerts, 1)
	alert := result.Alerts[0]
	require.Equal(t, models.AlertTypeCustomThreshold, alert.AlertType)
	require.Equal(t, 70.0, alert.Threshold)
	require.InDelta(t, 75.0, alert.BudgetUsage, 1e-9)
}

func TestSetCustomThresholdAboveUsageStaysQuiet(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCropService(t, db)
	ctx := context.Background()

	crop, err := svc.Create(ctx, CreateCropInput{UserID: "user-1", Name: "Maize", PlannedBudget: 10000})
	require.NoError(t, err)
	seedExpense(t, db, "user-1", crop.ID, 5000)

	result, err := svc.SetCustomThreshold(ctx, "user-1", crop.ID, 80)
	require.NoError(t, err)
	require.NoError(t, result.AlertErr)
	require.Empty(t, result.Alerts)
}

func TestSetCustomThresholdValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCropService(t, db)
	ctx := context.Background()

	crop, err := svc.Create(ctx, CreateCropInput{UserID: "user-1", Name: "Maize", PlannedBudget: 1000})
	require.NoError(t, err)

	_, err = svc.SetCustomThreshold(ctx, "user-1", crop.ID, 0)
	require.Error(t, err)

	_, err = svc.SetCustomThreshold(ctx, "user-2", crop.ID, 50)
	require.ErrorIs(t, err, ErrCropNotFound)
}

func TestUpdateBudget(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCropService(t, db)
	ctx := context.Background()

	crop, err := svc.Create(ctx, CreateCropInput{UserID: "user-1", Name: "Maize", PlannedBudget: 1000})
	require.NoError(t, err)

	_, err = svc.UpdateBudget(ctx, "user-1", crop.ID, -1)
	require.ErrorIs(t, err, ErrInvalidBudget)

	updated, err := svc.UpdateBudget(ctx, "user-1", crop.ID, 2500)
	require.NoError(t, err)
	require.Equal(t, 2500.0, updated.PlannedBudget)

	reloaded, err := svc.Get(ctx, "user-1", crop.ID)
	require.NoError(t, err)
	require.Equal(t, 2500.0, reloaded.PlannedBudget)
}

func TestTotalSpendSumsOwnerExpensesOnly(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCropService(t, db)
	ctx := context.Background()

	crop, err := svc.Create(ctx, CreateCropInput{UserID: "user-1", Name: "Maize", PlannedBudget: 1000})
	require.NoError(t, err)

	total, err := svc.TotalSpend(ctx, "user-1", crop.ID)
	require.NoError(t, err)
	require.Zero(t, total)

	seedExpense(t, db, "user-1", crop.ID, 300)
	seedExpense(t, db, "user-1", crop.ID, 450)
	seedExpense(t, db, "user-2", crop.ID, 999)

	total, err = svc.TotalSpend(ctx, "user-1", crop.ID)
	require.NoError(t, err)
	require.Equal(t, 750.0, total)
}

func TestCropListOrderedNewestFirst(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newCropService(t, db)
	ctx := context.Background()

	for _, name := range []string{"Maize", "Beans", "Rice"} {
		_, err := svc.Create(ctx, CreateCropInput{UserID: "user-1", Name: name, PlannedBudget: 1000})
		require.NoError(t, err)
	}

	crops, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, crops, 3)

	crops, err = svc.List(ctx, "user-2")
	require.NoError(t, err)
	require.Empty(t, crops)
}
