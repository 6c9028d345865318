package auth

import "net/mail"

const minPasswordLength = 5

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Field: "email", Message: "Invalid email address"}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must contain at least 5 characters"}
	}
	return nil
}

// validatePasswordMatch checks the new password and its confirmation.
// First violated rule wins.
func validatePasswordMatch(password, passwordConfirm string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	if password != passwordConfirm {
		return &ValidationError{Field: "passwordConfirm", Message: "passwords do not match"}
	}
	return nil
}
