package models

import "time"

// PasswordResetToken is a bearer capability for the password reset flow.
// The unique index on UserID keeps at most one live token per user; a new
// request replaces the existing row instead of adding a second one.
type PasswordResetToken struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Token       string    `json:"-" gorm:"index;not null"`
	TokenExpiry time.Time `json:"token_expiry" gorm:"not null"`

	User User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
