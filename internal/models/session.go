package models

import "time"

// Session tracks an issued refresh token until it expires or is revoked.
type Session struct {
	BaseModel

	UserID    string `gorm:"type:uuid;index;not null" json:"user_id"`
	TokenHash string `gorm:"uniqueIndex;not null" json:"-"`

	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`

	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

// Active reports whether the session can still be used to refresh tokens.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
