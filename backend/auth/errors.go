package auth

import "errors"

// Failure classes returned by the workflow service. Handlers translate
// them with Message; the raw errors never reach a client.
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrOtpRequired           = errors.New("otp required")
	ErrOtpInvalid            = errors.New("otp invalid or expired")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAlreadyLoggedIn       = errors.New("already logged in")
	ErrDuplicateEmail        = errors.New("duplicate email")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrUserNotFound          = errors.New("user not found")
	ErrStorage               = errors.New("storage error")
)

// ValidationError reports the first violated input rule and the field it
// belongs to, so forms can attach the message inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Message maps a core failure to its user-facing string. Unknown errors
// fall back to a generic message so storage internals (constraint names,
// driver codes) never leak.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials."
	case errors.Is(err, ErrOtpRequired):
		return "OTP required to complete login"
	case errors.Is(err, ErrOtpInvalid):
		return "OTP is not valid or expired"
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrAlreadyLoggedIn):
		return "User already logged in. Please log out first"
	case errors.Is(err, ErrDuplicateEmail):
		return "User email must be unique"
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return "Your password reset token is invalid or has expired"
	case errors.Is(err, ErrUserNotFound):
		return "User not found"
	default:
		return "Something went wrong"
	}
}
