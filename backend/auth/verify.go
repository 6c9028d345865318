package auth

import (
	"errors"

	"auth-portal/backend/models"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Verify checks the submitted credentials against the stored user row.
// An unknown email and a wrong password fail identically so the response
// does not reveal whether an account exists. Accounts with two-factor
// activated additionally require a current OTP. Pure read and compare, no
// side effects.
func (s *Service) Verify(email, password, otp string) (*Principal, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if user.TwoFactorActivated {
		if otp == "" {
			return nil, ErrOtpRequired
		}
		// totp.Validate tolerates one time step of clock skew.
		if !totp.Validate(otp, user.TwoFactorSecret) {
			return nil, ErrOtpInvalid
		}
	}

	return &Principal{UserID: user.ID, Email: user.Email}, nil
}

// PreLoginCheck runs the lookup and password steps only, reporting whether
// the account needs a second factor. Step one of the two-step login: the
// client uses the answer to decide whether to prompt for an OTP.
func (s *Service) PreLoginCheck(email, password string) (bool, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrInvalidCredentials
		}
		return false, storageError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return false, ErrInvalidCredentials
	}

	return user.TwoFactorActivated, nil
}
