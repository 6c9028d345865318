package database

import (
	"auth-portal/backend/config"
	"auth-portal/backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the SQLite database and migrates the schema. TranslateError is
// enabled so uniqueness violations surface as gorm.ErrDuplicatedKey instead
// of driver-specific errors.
func Init() error {
	var err error
	DB, err = gorm.Open(sqlite.Open(config.C.DatabasePath), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	return DB.AutoMigrate(&models.User{}, &models.PasswordResetToken{}, &models.LogEntry{})
}
