package models

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken is one link in a user's refresh-token rotation chain.
// Only a SHA-256 hash of the signed token is stored; presenting a token
// whose row is already revoked means the chain leaked and must be killed.
type RefreshToken struct {
	gorm.Model
	UserID        uint       `json:"user_id" gorm:"index;not null"`
	JTI           string     `json:"jti" gorm:"uniqueIndex;not null"`
	TokenHash     string     `json:"-" gorm:"not null"`
	ExpiresAt     time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt     *time.Time `json:"revoked_at"`
	ReplacedByJTI string     `json:"-" gorm:"default:''"`
}

// Active reports whether the token can still be redeemed.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
