package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"auth-portal/backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const resetTokenTTL = time.Hour

// newResetToken draws 32 bytes from the system CSPRNG, hex-encoded.
func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// validToken looks up a live token row by bearer value. Expiry is lazy:
// the row stays in the table but is invalid from the exact expiry instant
// onward.
func (s *Service) validToken(token string) (*models.PasswordResetToken, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	var row models.PasswordResetToken
	if err := s.db.Where("token = ?", token).First(&row).Error; err != nil {
		return nil, ErrInvalidOrExpiredToken
	}
	if !s.now().Before(row.TokenExpiry) {
		return nil, ErrInvalidOrExpiredToken
	}
	return &row, nil
}

// RequestPasswordReset issues a reset token and mails the reset link. A
// session must not be present. An unknown email succeeds with no observable
// difference so the endpoint cannot be used to enumerate accounts. A repeat
// request replaces the user's existing token via an atomic upsert.
func (s *Service) RequestPasswordReset(p *Principal, email string) error {
	if p != nil {
		return ErrAlreadyLoggedIn
	}
	if err := validateEmail(email); err != nil {
		return err
	}

	var user models.User
	if err := s.db.Select("id").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return storageError(err)
	}

	token, err := newResetToken()
	if err != nil {
		return storageError(err)
	}
	row := models.PasswordResetToken{
		UserID:      user.ID,
		Token:       token,
		TokenExpiry: s.now().Add(resetTokenTTL),
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "token_expiry"}),
	}).Omit(clause.Associations).Create(&row).Error
	if err != nil {
		return storageError(err)
	}

	resetHref := fmt.Sprintf("%s/update-password?token=%s", s.baseURL, token)
	body := fmt.Sprintf(`<h1>Hi, %s!</h1>
<p>You have requested to reset your password. Here is your password reset link, this link will expire in 1 hour.</p>
<br>
<a href="%s">%s</a>`, email, resetHref, resetHref)
	if err := s.mailer.Send(email, "Your password reset request", body); err != nil {
		return storageError(err)
	}
	return nil
}

// ConsumePasswordReset redeems a token: the target user's password is
// replaced and the token row deleted in one transaction, so a token can
// never be replayed after the password changed.
func (s *Service) ConsumePasswordReset(p *Principal, token, password, passwordConfirm string) error {
	row, err := s.validToken(token)
	if err != nil {
		return err
	}
	if p != nil {
		return ErrAlreadyLoggedIn
	}
	if err := validatePasswordMatch(password, passwordConfirm); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return storageError(err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", row.UserID).
			Update("password", string(hashed)).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PasswordResetToken{}, row.ID).Error
	})
	if err != nil {
		return storageError(err)
	}
	return nil
}
