package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 30*24*time.Hour, cfg.Auth.Session.RefreshTTL)
	require.Equal(t, 90.0, cfg.Alerts.WarningThreshold)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.SessionSchedule)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SGPAGRI_SERVER_PORT", "9100")
	t.Setenv("SGPAGRI_DATABASE_DRIVER", "postgres")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
}
