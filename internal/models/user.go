package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a staff account in the system
type User struct {
	BaseModel
	Username     string `gorm:"uniqueIndex;size:80;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Role         Role   `gorm:"size:20;default:'user'" json:"role"`
	DefaultWard  string `gorm:"size:50" json:"defaultWard,omitempty"`

	// Relations (not always preloaded)
	RefreshTokens []RefreshToken          `gorm:"foreignKey:UserID" json:"-"`
	RecentViews   []RecentlyViewedPatient `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	DefaultWard string    `json:"defaultWard,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		DefaultWard: u.DefaultWard,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
