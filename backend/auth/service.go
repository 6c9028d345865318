package auth

import (
	"errors"
	"fmt"
	"time"

	"auth-portal/backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Principal is the verified identity attached to a session after a
// successful login. Session-scoped operations take it explicitly; the
// service never reads ambient session state.
type Principal struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

// Mailer delivers a single message. Delivery is fire-and-forget from the
// service's perspective; a failure is surfaced immediately, never retried.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// Service runs the account workflows: registration, login, password
// change/reset and two-factor enrollment.
type Service struct {
	db      *gorm.DB
	mailer  Mailer
	issuer  string
	baseURL string
	now     func() time.Time
}

func NewService(db *gorm.DB, mailer Mailer, issuer, baseURL string) *Service {
	return &Service{
		db:      db,
		mailer:  mailer,
		issuer:  issuer,
		baseURL: baseURL,
		now:     time.Now,
	}
}

func storageError(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

// Register validates the input, hashes the password and inserts the user.
// A uniqueness violation on the email column maps to ErrDuplicateEmail.
func (s *Service) Register(email, password, passwordConfirm string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePasswordMatch(password, passwordConfirm); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return storageError(err)
	}

	user := models.User{Email: email, Password: string(hashed)}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return storageError(err)
	}
	return nil
}

// Login runs the full credential verification and returns the principal to
// mint a session from. No state is mutated on failure.
func (s *Service) Login(email, password, otp string) (*Principal, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	return s.Verify(email, password, otp)
}

// ChangePassword re-verifies the current password before storing the new
// hash. The old password stops working immediately.
func (s *Service) ChangePassword(p *Principal, currentPassword, password, passwordConfirm string) error {
	if p == nil {
		return ErrUnauthorized
	}
	if err := validatePassword(currentPassword); err != nil {
		return err
	}
	if err := validatePasswordMatch(password, passwordConfirm); err != nil {
		return err
	}

	var user models.User
	if err := s.db.Where("email = ?", p.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return storageError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)) != nil {
		return ErrUnauthorized
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return storageError(err)
	}
	if err := s.db.Model(&models.User{}).Where("email = ?", p.Email).
		Update("password", string(hashed)).Error; err != nil {
		return storageError(err)
	}
	return nil
}
