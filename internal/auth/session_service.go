package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
)

// DefaultRefreshTokenTTL is the fallback lifetime for refresh tokens.
const DefaultRefreshTokenTTL = 30 * 24 * time.Hour

const refreshTokenBytes = 32

// ErrSessionNotFound indicates the refresh token does not map to a usable session.
var ErrSessionNotFound = errors.New("session: not found or expired")

// SessionConfig customises session issuance.
type SessionConfig struct {
	RefreshTTL time.Duration
	Clock      func() time.Time
}

// SessionService issues and validates refresh-token backed sessions.
type SessionService struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// IssuedSession pairs a persisted session with its plaintext refresh token.
// The plaintext token is returned exactly once; only its hash is stored.
type IssuedSession struct {
	Session      models.Session
	RefreshToken string
}

// NewSessionService constructs a SessionService.
func NewSessionService(db *gorm.DB, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session: db is required")
	}

	ttl := cfg.RefreshTTL
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &SessionService{db: db, ttl: ttl, now: now}, nil
}

// Create opens a new session for the user and returns the refresh token.
func (s *SessionService) Create(ctx context.Context, userID, ipAddress, userAgent string) (*IssuedSession, error) {
	if userID == "" {
		return nil, errors.New("session: user id is required")
	}

	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("session: generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	session := models.Session{
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: s.now().Add(s.ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}

	return &IssuedSession{Session: session, RefreshToken: token}, nil
}

// Validate resolves a refresh token to its active session.
func (s *SessionService) Validate(ctx context.Context, refreshToken string) (*models.Session, error) {
	if refreshToken == "" {
		return nil, ErrSessionNotFound
	}

	var session models.Session
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", hashToken(refreshToken)).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("session: lookup: %w", err)
	}

	if !session.Active(s.now()) {
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

// Revoke marks the session unusable without deleting the audit trail.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	now := s.now()
	result := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", now)
	if result.Error != nil {
		return fmt.Errorf("session: revoke: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// CleanupExpired removes sessions past their expiry or already revoked.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at IS NOT NULL", s.now()).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session: cleanup: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
