package database

import (
	"gorm.io/gorm"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Crop{},
		&models.Expense{},
		&models.Alert{},
		&models.Product{},
	); err != nil {
		return err
	}

	return ensureAlertUniqueness(db)
}

// ensureAlertUniqueness installs a partial unique index so the store itself
// enforces at most one undismissed alert per (user, crop, type). MySQL has no
// partial indexes; there the alert service's per-crop serialization is the
// only fence.
func ensureAlertUniqueness(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		return db.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_active_unique
			 ON alerts (user_id, crop_id, alert_type)
			 WHERE is_dismissed = false`,
		).Error
	default:
		return nil
	}
}
