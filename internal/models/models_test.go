package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBaseModelGeneratesUUID(t *testing.T) {
	m := &BaseModel{}
	require.NoError(t, m.BeforeCreate(&gorm.DB{}))
	require.NotEmpty(t, m.ID)

	fixed := &BaseModel{ID: "preset"}
	require.NoError(t, fixed.BeforeCreate(&gorm.DB{}))
	require.Equal(t, "preset", fixed.ID)
}

func TestSessionActive(t *testing.T) {
	now := time.Now()

	live := Session{ExpiresAt: now.Add(time.Hour)}
	require.True(t, live.Active(now))

	expired := Session{ExpiresAt: now.Add(-time.Hour)}
	require.False(t, expired.Active(now))

	revoked := Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &now}
	require.False(t, revoked.Active(now))
}
