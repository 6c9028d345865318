package auth

import (
	"errors"
	"net/url"

	"auth-portal/backend/models"

	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"
)

// provisioningURI renders the otpauth:// enrollment URL authenticator apps
// scan from a QR code.
func provisioningURI(account, issuer, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return u.String()
}

// GenerateTwoFactorSecret returns the provisioning URI for the caller's
// TOTP secret, creating and persisting one on first call. Repeated calls
// before activation return the same underlying secret; an existing secret
// is never overwritten. The activation flag is not touched here.
func (s *Service) GenerateTwoFactorSecret(p *Principal) (string, error) {
	if p == nil {
		return "", ErrUnauthorized
	}

	var user models.User
	if err := s.db.First(&user, p.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", storageError(err)
	}

	secret := user.TwoFactorSecret
	if secret == "" {
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      s.issuer,
			AccountName: p.Email,
		})
		if err != nil {
			return "", storageError(err)
		}
		secret = key.Secret()
		if err := s.db.Model(&user).Update("two_factor_secret", secret).Error; err != nil {
			return "", storageError(err)
		}
	}

	return provisioningURI(p.Email, s.issuer, secret), nil
}

// ActivateTwoFactor flips the activation flag once the user proves they
// enrolled the secret by submitting a valid OTP. No mutation on failure.
func (s *Service) ActivateTwoFactor(p *Principal, otp string) error {
	if p == nil {
		return ErrUnauthorized
	}

	var user models.User
	if err := s.db.First(&user, p.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return storageError(err)
	}

	// No generated secret means no OTP can possibly match.
	if user.TwoFactorSecret == "" || !totp.Validate(otp, user.TwoFactorSecret) {
		return ErrOtpInvalid
	}

	if err := s.db.Model(&user).Update("two_factor_activated", true).Error; err != nil {
		return storageError(err)
	}
	return nil
}

// DeactivateTwoFactor clears the secret and the activation flag in a
// single update. An active session is the only requirement; no OTP
// re-confirmation is asked for.
func (s *Service) DeactivateTwoFactor(p *Principal) error {
	if p == nil {
		return ErrUnauthorized
	}

	err := s.db.Model(&models.User{}).Where("id = ?", p.UserID).Updates(map[string]any{
		"two_factor_secret":    "",
		"two_factor_activated": false,
	}).Error
	if err != nil {
		return storageError(err)
	}
	return nil
}
