package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
	apperrors "github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/errors"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/metrics"
)

// Fixed thresholds for the built-in alert rules.
const (
	DefaultWarningThreshold = 90.0
	OverBudgetThreshold     = 100.0
)

// AlertService decides which budget alerts to materialize for a spend update
// and owns the alert records afterwards. Evaluation is serialized per
// (user, crop) so concurrent expense writes cannot double-create an alert of
// the same kind; the store's partial unique index is the second fence.
type AlertService struct {
	db               *gorm.DB
	warningThreshold float64
	now              func() time.Time

	locks sync.Map // "userID/cropID" -> *sync.Mutex
}

// AlertServiceConfig customises the alert engine.
type AlertServiceConfig struct {
	// WarningThreshold overrides the fixed warning percentage (default 90).
	WarningThreshold float64
	Clock            func() time.Time
}

// NewAlertService constructs an AlertService.
func NewAlertService(db *gorm.DB, cfg AlertServiceConfig) (*AlertService, error) {
	if db == nil {
		return nil, errors.New("alert service: db is required")
	}

	warning := cfg.WarningThreshold
	if warning <= 0 {
		warning = DefaultWarningThreshold
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &AlertService{db: db, warningThreshold: warning, now: now}, nil
}

// EvaluateInput carries a spend snapshot into an alert evaluation pass.
type EvaluateInput struct {
	UserID   string
	CropID   string
	CropName string

	TotalSpent    float64
	PlannedBudget float64

	// CustomThreshold enables the custom rule when the crop carries one.
	CustomThreshold *float64
}

// Evaluate runs the threshold rules against the supplied spend snapshot and
// persists any alerts that are due. The three rules are independent: a single
// pass may create zero up to three alerts. An alert kind with an undismissed
// record already present is suppressed.
func (s *AlertService) Evaluate(ctx context.Context, input EvaluateInput) ([]models.Alert, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	cropID := strings.TrimSpace(input.CropID)
	if userID == "" || cropID == "" {
		return nil, errors.New("alert service: user id and crop id are required")
	}

	usage, err := UsagePercentage(input.TotalSpent, input.PlannedBudget)
	if err != nil {
		metrics.AlertEvaluations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("alert service: evaluate usage: %w", err)
	}

	unlock := s.lock(userID, cropID)
	defer unlock()

	existing, err := s.FindUndismissed(ctx, userID, cropID)
	if err != nil {
		metrics.AlertEvaluations.WithLabelValues("error").Inc()
		return nil, err
	}

	present := make(map[string]bool, len(existing))
	for _, alert := range existing {
		present[alert.AlertType] = true
	}

	var due []models.Alert

	if usage >= s.warningThreshold && usage < OverBudgetThreshold && !present[models.AlertTypeWarning] {
		due = append(due, s.buildAlert(input, usage, models.AlertTypeWarning, s.warningThreshold,
			fmt.Sprintf("%s has used %.1f%% of its planned budget", input.CropName, usage)))
	}

	if usage >= OverBudgetThreshold && !present[models.AlertTypeOverBudget] {
		overage := input.TotalSpent - input.PlannedBudget
		due = append(due, s.buildAlert(input, usage, models.AlertTypeOverBudget, OverBudgetThreshold,
			fmt.Sprintf("%s is over budget by %.2f", input.CropName, overage)))
	}

	if input.CustomThreshold != nil && usage >= *input.CustomThreshold && !present[models.AlertTypeCustomThreshold] {
		alert := s.buildAlert(input, usage, models.AlertTypeCustomThreshold, *input.CustomThreshold,
			fmt.Sprintf("%s reached your %.1f%% spending threshold (now at %.1f%%)", input.CropName, *input.CustomThreshold, usage))
		alert.CustomThreshold = input.CustomThreshold
		due = append(due, alert)
	}

	var created []models.Alert
	for i := range due {
		if err := s.db.WithContext(ctx).Create(&due[i]).Error; err != nil {
			if isUniqueConstraintError(err) {
				// another writer got there first; the invariant holds
				continue
			}
			metrics.AlertEvaluations.WithLabelValues("error").Inc()
			return created, fmt.Errorf("alert service: create %s alert: %w", due[i].AlertType, err)
		}
		metrics.AlertsGenerated.WithLabelValues(due[i].AlertType).Inc()
		created = append(created, due[i])
	}

	metrics.AlertEvaluations.WithLabelValues("ok").Inc()
	return created, nil
}

func (s *AlertService) buildAlert(input EvaluateInput, usage float64, alertType string, threshold float64, message string) models.Alert {
	delivery := []models.AlertDelivery{{
		Method: models.DeliveryMethodInApp,
		SentAt: s.now().UTC(),
		Status: models.DeliveryStatusSent,
	}}
	sentVia, _ := json.Marshal(delivery)

	return models.Alert{
		UserID:      input.UserID,
		CropID:      input.CropID,
		CropName:    input.CropName,
		AlertType:   alertType,
		Message:     message,
		BudgetUsage: usage,
		Threshold:   threshold,
		Amount:      input.TotalSpent,
		Budget:      input.PlannedBudget,
		SentVia:     datatypes.JSON(sentVia),
	}
}

// FindUndismissed returns all undismissed alerts for a (user, crop) pair.
func (s *AlertService) FindUndismissed(ctx context.Context, userID, cropID string) ([]models.Alert, error) {
	var rows []models.Alert
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND crop_id = ? AND is_dismissed = ?", userID, cropID, false).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("alert service: find undismissed: %w", err)
	}
	return rows, nil
}

// ListAlertsInput defines filters for querying user alerts.
type ListAlertsInput struct {
	UserID           string
	UnreadOnly       bool
	IncludeDismissed bool
	Limit            int
	Offset           int
}

// ListForUser returns alerts for the supplied user ordered by recency.
// Dismissed alerts are excluded unless explicitly requested.
func (s *AlertService) ListForUser(ctx context.Context, input ListAlertsInput) ([]models.Alert, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("alert service: user id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if !input.IncludeDismissed {
		q = q.Where("is_dismissed = ?", false)
	}
	if input.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var rows []models.Alert
	if err := q.Order("created_at DESC").
		Limit(limit).
		Offset(maxInt(0, input.Offset)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("alert service: list alerts: %w", err)
	}

	return rows, nil
}

// MarkRead sets the alert read flag for a user.
func (s *AlertService) MarkRead(ctx context.Context, userID, alertID string) (*models.Alert, error) {
	return s.setReadState(ctx, userID, alertID, true)
}

// MarkUnread unsets the alert read flag.
func (s *AlertService) MarkUnread(ctx context.Context, userID, alertID string) (*models.Alert, error) {
	return s.setReadState(ctx, userID, alertID, false)
}

func (s *AlertService) setReadState(ctx context.Context, userID, alertID string, read bool) (*models.Alert, error) {
	ctx = ensureContext(ctx)

	alert, err := s.loadOwned(ctx, userID, alertID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"is_read": read}
	if read {
		now := s.now().UTC()
		updates["read_at"] = now
		alert.ReadAt = &now
	} else {
		updates["read_at"] = nil
		alert.ReadAt = nil
	}
	alert.IsRead = read

	if err := s.db.WithContext(ctx).Model(alert).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("alert service: update read state: %w", err)
	}

	return alert, nil
}

// Dismiss suppresses the alert from listings and duplicate detection. The
// record is retained; re-crossing the threshold afterwards creates a fresh
// alert of the same kind.
func (s *AlertService) Dismiss(ctx context.Context, userID, alertID string) (*models.Alert, error) {
	ctx = ensureContext(ctx)

	alert, err := s.loadOwned(ctx, userID, alertID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(alert).Updates(map[string]any{
		"is_dismissed": true,
		"dismissed_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("alert service: dismiss: %w", err)
	}

	alert.IsDismissed = true
	alert.DismissedAt = &now
	return alert, nil
}

// Delete removes an alert owned by the supplied user.
func (s *AlertService) Delete(ctx context.Context, userID, alertID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", alertID, userID).
		Delete(&models.Alert{})
	if result.Error != nil {
		return fmt.Errorf("alert service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountUndismissed reports how many undismissed alerts exist platform-wide,
// feeding the maintenance gauge refresh.
func (s *AlertService) CountUndismissed(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("is_dismissed = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("alert service: count undismissed: %w", err)
	}
	return count, nil
}

func (s *AlertService) loadOwned(ctx context.Context, userID, alertID string) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", alertID, userID).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("alert service: load alert: %w", err)
	}
	return &alert, nil
}

func (s *AlertService) lock(userID, cropID string) func() {
	key := userID + "/" + cropID
	value, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
