package models

import (
	"time"

	"gorm.io/datatypes"
)

// Alert types emitted by the budget alerting engine.
const (
	AlertTypeWarning         = "warning"
	AlertTypeOverBudget      = "over-budget"
	AlertTypeCustomThreshold = "custom-threshold"
)

// Delivery methods and statuses recorded in Alert.SentVia.
const (
	DeliveryMethodInApp = "in-app"
	DeliveryMethodSMS   = "sms"
	DeliveryMethodEmail = "email"

	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// Alert is a persisted budget-threshold alert. All monetary fields are
// snapshots taken at creation time and are never recomputed.
type Alert struct {
	BaseModel

	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`
	CropID string `gorm:"type:uuid;index;not null" json:"crop_id"`

	// CropName is denormalized at creation and does not track crop renames.
	CropName string `json:"crop_name"`

	AlertType string `gorm:"type:varchar(32);not null;index" json:"alert_type"`
	Message   string `gorm:"type:text" json:"message"`

	BudgetUsage float64 `json:"budget_usage"`
	Threshold   float64 `json:"threshold"`
	Amount      float64 `json:"amount"`
	Budget      float64 `json:"budget"`

	CustomThreshold *float64 `json:"custom_threshold,omitempty"`

	IsRead      bool `gorm:"default:false;index" json:"is_read"`
	IsDismissed bool `gorm:"default:false;index" json:"is_dismissed"`

	ReadAt      *time.Time `json:"read_at"`
	DismissedAt *time.Time `json:"dismissed_at"`

	// SentVia holds the ordered list of delivery attempts as JSON.
	SentVia datatypes.JSON `json:"sent_via"`
}

// AlertDelivery is one entry of Alert.SentVia.
type AlertDelivery struct {
	Method string    `json:"method"`
	SentAt time.Time `json:"sent_at"`
	Status string    `json:"status"`
}
