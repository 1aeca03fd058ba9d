package models

import "time"

// Expense records a single spend event. Expenses are append-only from the
// alerting engine's perspective.
type Expense struct {
	BaseModel

	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`

	// CropName keeps the free-text name supplied on the original write.
	// CropID holds the reference resolved at write time so later crop
	// renames cannot drift the spend totals.
	CropName string  `json:"crop_name"`
	CropID   *string `gorm:"type:uuid;index" json:"crop_id"`

	Title  string    `gorm:"not null" json:"title"`
	Amount float64   `gorm:"not null" json:"amount"`
	Date   time.Time `gorm:"index" json:"date"`
	Notes  string    `gorm:"type:text" json:"notes"`
}
