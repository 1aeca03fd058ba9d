package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
	apperrors "github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/errors"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/logger"
)

// ExpenseService records spend events and drives alert evaluation.
type ExpenseService struct {
	db     *gorm.DB
	crops  *CropService
	alerts *AlertService
	log    *zap.Logger
}

// NewExpenseService constructs an ExpenseService.
func NewExpenseService(db *gorm.DB, crops *CropService, alerts *AlertService) (*ExpenseService, error) {
	if db == nil {
		return nil, errors.New("expense service: db is required")
	}
	if crops == nil {
		return nil, errors.New("expense service: crop service is required")
	}
	if alerts == nil {
		return nil, errors.New("expense service: alert service is required")
	}
	return &ExpenseService{db: db, crops: crops, alerts: alerts, log: logger.WithModule("expenses")}, nil
}

// CreateExpenseInput captures a spend event.
type CreateExpenseInput struct {
	UserID   string
	CropName string
	Title    string
	Amount   float64
	Date     time.Time
	Notes    string
}

// CreateExpenseResult reports the stored expense and the best-effort outcome
// of the alert evaluation pass it triggered.
type CreateExpenseResult struct {
	Expense models.Expense
	Alerts  []models.Alert

	// AlertErr is set when evaluation failed after the expense was stored.
	// The expense write itself is always reported as successful.
	AlertErr error
}

// Create validates and persists an expense, then synchronously evaluates
// budget thresholds for the referenced crop. An expense naming an unknown
// crop is rejected before anything is written; alert-generation failures are
// logged and never surfaced as a failure of the expense write.
func (s *ExpenseService) Create(ctx context.Context, input CreateExpenseInput) (*CreateExpenseResult, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("expense service: user id is required")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.New("expense service: title is required")
	}

	if input.Amount <= 0 {
		return nil, apperrors.NewBadRequest("amount must be positive")
	}

	cropName := strings.TrimSpace(input.CropName)

	var crop *models.Crop
	if cropName != "" {
		var err error
		crop, err = s.crops.FindByName(ctx, userID, cropName)
		if err != nil {
			if errors.Is(err, ErrCropNotFound) {
				return nil, apperrors.NewNotFound(fmt.Sprintf("no crop named %q", cropName))
			}
			return nil, err
		}
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	expense := models.Expense{
		UserID:   userID,
		CropName: cropName,
		Title:    title,
		Amount:   input.Amount,
		Date:     date,
		Notes:    input.Notes,
	}
	if crop != nil {
		expense.CropID = &crop.ID
	}

	if err := s.db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, fmt.Errorf("expense service: create expense: %w", err)
	}

	result := &CreateExpenseResult{Expense: expense}

	if crop != nil {
		result.Alerts, result.AlertErr = s.evaluate(ctx, userID, crop)
		if result.AlertErr != nil {
			s.log.Warn("alert evaluation failed",
				zap.String("crop_id", crop.ID),
				zap.String("expense_id", expense.ID),
				zap.Error(result.AlertErr),
			)
		}
	}

	return result, nil
}

func (s *ExpenseService) evaluate(ctx context.Context, userID string, crop *models.Crop) ([]models.Alert, error) {
	total, err := s.crops.TotalSpend(ctx, userID, crop.ID)
	if err != nil {
		return nil, err
	}

	return s.alerts.Evaluate(ctx, EvaluateInput{
		UserID:          userID,
		CropID:          crop.ID,
		CropName:        crop.Name,
		TotalSpent:      total,
		PlannedBudget:   crop.PlannedBudget,
		CustomThreshold: crop.CustomThreshold,
	})
}

// ListExpensesInput defines filters for querying user expenses.
type ListExpensesInput struct {
	UserID   string
	CropID   string
	CropName string
	Limit    int
	Offset   int
}

// List returns expenses for the supplied user, newest first.
func (s *ExpenseService) List(ctx context.Context, input ListExpensesInput) ([]models.Expense, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("expense service: user id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if cropID := strings.TrimSpace(input.CropID); cropID != "" {
		q = q.Where("crop_id = ?", cropID)
	}
	if cropName := strings.TrimSpace(input.CropName); cropName != "" {
		q = q.Where("crop_name = ?", cropName)
	}

	var rows []models.Expense
	if err := q.Order("date DESC").
		Limit(limit).
		Offset(maxInt(0, input.Offset)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("expense service: list expenses: %w", err)
	}

	return rows, nil
}

// Get retrieves an expense by identifier, scoped to its owner.
func (s *ExpenseService) Get(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	ctx = ensureContext(ctx)

	var expense models.Expense
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", expenseID, userID).
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("expense service: load expense: %w", err)
	}
	return &expense, nil
}
