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
	"github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/logger"
)

// Crop service errors.
var (
	ErrCropNotFound = errors.New("crop service: crop not found")
)

// CropService manages cultivation projects and their alert thresholds.
type CropService struct {
	db     *gorm.DB
	alerts *AlertService
	log    *zap.Logger
}

// NewCropService constructs a CropService. The alert service is required so
// threshold updates can trigger an immediate evaluation pass.
func NewCropService(db *gorm.DB, alerts *AlertService) (*CropService, error) {
	if db == nil {
		return nil, errors.New("crop service: db is required")
	}
	if alerts == nil {
		return nil, errors.New("crop service: alert service is required")
	}
	return &CropService{db: db, alerts: alerts, log: logger.WithModule("crops")}, nil
}

// CreateCropInput captures required fields when registering a crop.
type CreateCropInput struct {
	UserID          string
	Name            string
	PlannedBudget   float64
	StartDate       time.Time
	ExpectedHarvest *time.Time
}

// Create registers a new crop. The planned budget must be positive; allowing
// zero here would poison every later usage computation.
func (s *CropService) Create(ctx context.Context, input CreateCropInput) (*models.Crop, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("crop service: user id is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("crop service: name is required")
	}

	if input.PlannedBudget <= 0 {
		return nil, ErrInvalidBudget
	}

	start := input.StartDate
	if start.IsZero() {
		start = time.Now().UTC()
	}

	crop := models.Crop{
		UserID:          userID,
		Name:            name,
		PlannedBudget:   input.PlannedBudget,
		StartDate:       start,
		ExpectedHarvest: input.ExpectedHarvest,
	}

	if err := s.db.WithContext(ctx).Create(&crop).Error; err != nil {
		return nil, fmt.Errorf("crop service: create crop: %w", err)
	}

	return &crop, nil
}

// List returns all crops owned by the user.
func (s *CropService) List(ctx context.Context, userID string) ([]models.Crop, error) {
	ctx = ensureContext(ctx)

	var rows []models.Crop
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("crop service: list crops: %w", err)
	}
	return rows, nil
}

// Get retrieves a crop by identifier, scoped to its owner.
func (s *CropService) Get(ctx context.Context, userID, cropID string) (*models.Crop, error) {
	ctx = ensureContext(ctx)

	var crop models.Crop
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", cropID, userID).
		First(&crop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCropNotFound
		}
		return nil, fmt.Errorf("crop service: load crop: %w", err)
	}
	return &crop, nil
}

// FindByName resolves a crop by its display name for an owner. Matching is
// case-sensitive string equality.
func (s *CropService) FindByName(ctx context.Context, userID, name string) (*models.Crop, error) {
	ctx = ensureContext(ctx)

	var crop models.Crop
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&crop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCropNotFound
		}
		return nil, fmt.Errorf("crop service: find crop by name: %w", err)
	}

	// SQLite compares ASCII case-insensitively only with NOCASE collation,
	// which we do not use, but guard the contract explicitly anyway.
	if crop.Name != name {
		return nil, ErrCropNotFound
	}

	return &crop, nil
}

// ThresholdResult reports the outcome of a threshold update, including any
// alerts generated by the immediate evaluation pass.
type ThresholdResult struct {
	Crop   *models.Crop
	Alerts []models.Alert

	// AlertErr records a failed evaluation pass. The threshold update itself
	// succeeded; alerting is a best-effort side effect.
	AlertErr error
}

// SetCustomThreshold persists a new custom threshold percentage and
// immediately evaluates it against the crop's current spend, without waiting
// for the next expense write.
func (s *CropService) SetCustomThreshold(ctx context.Context, userID, cropID string, threshold float64) (*ThresholdResult, error) {
	ctx = ensureContext(ctx)

	if threshold <= 0 {
		return nil, errors.New("crop service: threshold must be positive")
	}

	crop, err := s.Get(ctx, userID, cropID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(crop).
		Update("custom_threshold", threshold).Error; err != nil {
		return nil, fmt.Errorf("crop service: set threshold: %w", err)
	}
	crop.CustomThreshold = &threshold

	result := &ThresholdResult{Crop: crop}

	total, err := s.TotalSpend(ctx, userID, cropID)
	if err != nil {
		result.AlertErr = err
	} else {
		result.Alerts, result.AlertErr = s.alerts.Evaluate(ctx, EvaluateInput{
			UserID:          userID,
			CropID:          crop.ID,
			CropName:        crop.Name,
			TotalSpent:      total,
			PlannedBudget:   crop.PlannedBudget,
			CustomThreshold: crop.CustomThreshold,
		})
	}

	if result.AlertErr != nil {
		s.log.Warn("threshold evaluation failed",
			zap.String("crop_id", cropID),
			zap.Error(result.AlertErr),
		)
	}

	return result, nil
}

// UpdateBudget replaces the planned budget for a crop.
func (s *CropService) UpdateBudget(ctx context.Context, userID, cropID string, plannedBudget float64) (*models.Crop, error) {
	ctx = ensureContext(ctx)

	if plannedBudget <= 0 {
		return nil, ErrInvalidBudget
	}

	crop, err := s.Get(ctx, userID, cropID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(crop).
		Update("planned_budget", plannedBudget).Error; err != nil {
		return nil, fmt.Errorf("crop service: update budget: %w", err)
	}
	crop.PlannedBudget = plannedBudget

	return crop, nil
}

// TotalSpend sums all expenses recorded against the crop for its owner.
func (s *CropService) TotalSpend(ctx context.Context, userID, cropID string) (float64, error) {
	ctx = ensureContext(ctx)

	var total float64
	err := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("user_id = ? AND crop_id = ?", userID, cropID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("crop service: total spend: %w", err)
	}
	return total, nil
}
