package models

import "time"

// Crop is a tracked cultivation project with a planned budget and an
// optional user-defined alert threshold percentage.
type Crop struct {
	BaseModel

	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`

	StartDate       time.Time  `json:"start_date"`
	ExpectedHarvest *time.Time `json:"expected_harvest"`

	// PlannedBudget must be positive; enforced at creation time.
	PlannedBudget float64 `gorm:"not null" json:"planned_budget"`

	// CustomThreshold is a percentage of planned budget. A single active
	// value at a time; setting a new one overwrites the previous.
	CustomThreshold *float64 `json:"custom_threshold"`

	Expenses []Expense `gorm:"foreignKey:CropID" json:"-"`
	Alerts   []Alert   `gorm:"foreignKey:CropID" json:"-"`
}
