package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Email              string `json:"email" gorm:"uniqueIndex"`
	Password           string `json:"-"` // bcrypt hash, never serialize
	TwoFactorSecret    string `json:"-"` // TOTP secret, never serialize
	TwoFactorActivated bool   `json:"two_factor_activated" gorm:"default:false"`
}
