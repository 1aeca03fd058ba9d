package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	iauth "github.com/dhruvrajsinh5757/sgpagri-sub001/internal/auth"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/services"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/logger"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/metrics"
)

const (
	defaultAlertRetentionDays = 90
	defaultSessionSpec        = "@hourly"
	defaultMetricsSpec        = "@every 5m"
	defaultAlertSpec          = "@daily"
)

// Cleaner coordinates background maintenance: purging expired sessions,
// pruning dismissed alerts past their retention window, and refreshing the
// undismissed-alert gauge.
type Cleaner struct {
	db        *gorm.DB
	sessions  *iauth.SessionService
	alerts    *services.AlertService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	enabled   bool
	retention int

	sessionSchedule string
	metricsSchedule string
	alertSchedule   string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithAlertRetentionDays adjusts how long dismissed alerts are retained.
func WithAlertRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithMetricsSchedule overrides the cron specification for the gauge refresh.
func WithMetricsSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.metricsSchedule = spec
		}
	}
}

// WithAlertSchedule overrides the cron specification for alert retention enforcement.
func WithAlertSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.alertSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding job being skipped.
func NewCleaner(db *gorm.DB, sessions *iauth.SessionService, alerts *services.AlertService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:              db,
		sessions:        sessions,
		alerts:          alerts,
		now:             time.Now,
		retention:       defaultAlertRetentionDays,
		sessionSchedule: defaultSessionSpec,
		metricsSchedule: defaultMetricsSpec,
		alertSchedule:   defaultAlertSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.sessions != nil || cleaner.alerts != nil || cleaner.db != nil

	return cleaner
}

// Start registers the jobs with the cron scheduler and launches it if at
// least one job is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			ctx := context.Background()
			if _, err := c.sessions.CleanupExpired(ctx); err != nil {
				c.log.Warn("session cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.alerts != nil {
		if _, err := c.cron.AddFunc(c.metricsSchedule, func() {
			ctx := context.Background()
			if err := c.refreshAlertGauge(ctx); err != nil {
				c.log.Warn("alert gauge refresh failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.alertSchedule, func() {
			ctx := context.Background()
			if _, err := CleanupDismissedAlerts(ctx, c.db, c.cutoff()); err != nil {
				c.log.Warn("alert retention cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured routines sequentially. Primarily used in
// tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil && c.retention > 0 {
		if _, err := CleanupDismissedAlerts(ctx, c.db, c.cutoff()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.alerts != nil {
		if err := c.refreshAlertGauge(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

func (c *Cleaner) refreshAlertGauge(ctx context.Context) error {
	count, err := c.alerts.CountUndismissed(ctx)
	if err != nil {
		return err
	}
	metrics.UndismissedAlerts.Set(float64(count))
	return nil
}

func (c *Cleaner) cutoff() time.Time {
	return c.now().AddDate(0, 0, -c.retention)
}

// CleanupDismissedAlerts removes dismissed alerts whose dismissal predates the
// cutoff. Undismissed alerts are never touched; they hold the duplicate
// suppression state.
func CleanupDismissedAlerts(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup alerts: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).
		Where("is_dismissed = ? AND dismissed_at < ?", true, cutoff).
		Delete(&models.Alert{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup alerts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
