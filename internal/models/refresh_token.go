package models

import (
	"time"
)

// RefreshToken is a stored refresh token. Tokens are revoked rather than
// deleted so a replayed token can be told apart from one that never existed.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Revoke marks the token unusable and expires it immediately. The caller
// persists the change.
func (t *RefreshToken) Revoke() {
	t.IsRevoked = true
	t.ExpiresAt = time.Now()
}
