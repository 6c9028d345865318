package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"auth-portal/backend/models"
)

func tokenRows(t *testing.T, s *Service) []models.PasswordResetToken {
	t.Helper()
	var rows []models.PasswordResetToken
	if err := s.db.Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestRequestPasswordReset_UnknownEmailSucceedsSilently(t *testing.T) {
	s, m := newTestService(t)

	if err := s.RequestPasswordReset(nil, "ghost@example.com"); err != nil {
		t.Fatalf("unknown email must not surface an error, got %v", err)
	}
	if rows := tokenRows(t, s); len(rows) != 0 {
		t.Errorf("no token row should be created, got %d", len(rows))
	}
	if m.sent != 0 {
		t.Errorf("no mail should be sent, got %d", m.sent)
	}
}

func TestRequestPasswordReset_CreatesTokenAndMailsLink(t *testing.T) {
	s, m := newTestService(t)
	mustRegister(t, s, "user@example.com", "secret1")

	start := time.Now()
	if err := s.RequestPasswordReset(nil, "user@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	rows := tokenRows(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected exactly one token row, got %d", len(rows))
	}
	// 32 random bytes hex-encoded
	if len(rows[0].Token) != 64 {
		t.Errorf("token should be 64 hex chars, got %d", len(rows[0].Token))
	}
	expiry := rows[0].TokenExpiry
	if expiry.Before(start.Add(59*time.Minute)) || expiry.After(start.Add(61*time.Minute)) {
		t.Errorf("token expiry should be one hour out, got %v", expiry)
	}

	if m.sent != 1 {
		t.Fatalf("expected one mail, got %d", m.sent)
	}
	if m.to != "user@example.com" {
		t.Errorf("mail recipient = %q", m.to)
	}
	if !strings.Contains(m.body, "/update-password?token="+rows[0].Token) {
		t.Error("mail body should embed the reset link with the token")
	}
}

func TestRequestPasswordReset_ReplacesExistingToken(t *testing.T) {
	s, _ := newTestService(t)
	mustRegister(t, s, "user@example.com", "secret1")

	if err := s.RequestPasswordReset(nil, "user@example.com"); err != nil {
		t.Fatal(err)
	}
	first := tokenRows(t, s)[0].Token

	if err := s.RequestPasswordReset(nil, "user@example.com"); err != nil {
		t.Fatal(err)
	}
	rows := tokenRows(t, s)
	if len(rows) != 1 {
		t.Fatalf("second request must replace the row, not add one; got %d rows", len(rows))
	}
	if rows[0].Token == first {
		t.Error("second request should rotate the token value")
	}
}

func TestRequestPasswordReset_RejectsActiveSession(t *testing.T) {
	s, _ := newTestService(t)
	mustRegister(t, s, "user@example.com", "secret1")

	p := &Principal{UserID: 1, Email: "user@example.com"}
	if err := s.RequestPasswordReset(p, "user@example.com"); !errors.Is(err, ErrAlreadyLoggedIn) {
		t.Fatalf("expected ErrAlreadyLoggedIn, got %v", err)
	}
}

func TestConsumePasswordReset_Success(t *testing.T) {
	s, _ := newTestService(t)
	mustRegister(t, s, "user@example.com", "secret1")
	if err := s.RequestPasswordReset(nil, "user@example.com"); err != nil {
		t.Fatal(err)
	}
	token := tokenRows(t, s)[0].Token

	if err := s.ConsumePasswordReset(nil, token, "newpass1", "newpass1"); err != nil {
		t.Fatalf("ConsumePasswordReset failed: %v", err)
	}

	if _, err := s.Login("user@example.com", "newpass1", ""); err != nil {
		t.Errorf("new password should work after reset, got %v", err)
	}
	if rows := tokenRows(t, s); len(rows) != 0 {
		t.Errorf("token row must be deleted after use, got %d rows", len(rows))
	}

	// Token is single use
	err := s.ConsumePasswordReset(nil, token, "another1", "another1")
	if !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("second consumption must fail, got %v", err)
	}
}

func TestConsumePasswordReset_ExpiryInstantIsInvalid(t *testing.T) {
	s, _ := newTestService(t)
	mustRegister(t, s, "user@example.com", "secret1")

	issued := time.Now()
	s.now = func() time.Time { return issued }
	if err := s.RequestPasswordReset(nil, "user@example.com"); err != nil {
		t.Fatal(err)
	}
	token := tokenRows(t, s)[0].Token

	// One second before expiry the token is still live
	s.now = func() time.Time { return issued.Add(time.Hour - time.Second) }
	if _, err := s.validToken(token); err != nil {
		t.Fatalf("token should be valid just before expiry, got %v", err)
	}

	// At the exact expiry instant it is not
	s.now = func() time.Time { return issued.Add(time.Hour) }
	err := s.ConsumePasswordReset(nil, token, "newpass1", "newpass1")
	if !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken at expiry instant, got %v", err)
	}
}

func TestConsumePasswordReset_ValidationKeepsToken(t *testing.T) {
	s, _ := newTestService(t)
	mustRegister(t, s, "user@example.com", "secret1")
	if err := s.RequestPasswordReset(nil, "user@example.com"); err != nil {
		t.Fatal(err)
	}
	token := tokenRows(t, s)[0].Token

	err := s.ConsumePasswordReset(nil, token, "newpass1", "different1")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// Token stays live and the password is unchanged
	if _, err := s.validToken(token); err != nil {
		t.Errorf("token should survive a validation failure, got %v", err)
	}
	if _, err := s.Login("user@example.com", "secret1", ""); err != nil {
		t.Errorf("password should be unchanged, got %v", err)
	}
}

func TestConsumePasswordReset_RejectsActiveSession(t *testing.T) {
	s, _ := newTestService(t)
	mustRegister(t, s, "user@example.com", "secret1")
	if err := s.RequestPasswordReset(nil, "user@example.com"); err != nil {
		t.Fatal(err)
	}
	token := tokenRows(t, s)[0].Token

	p := &Principal{UserID: 1, Email: "user@example.com"}
	err := s.ConsumePasswordReset(p, token, "newpass1", "newpass1")
	if !errors.Is(err, ErrAlreadyLoggedIn) {
		t.Fatalf("expected ErrAlreadyLoggedIn, got %v", err)
	}
}

func TestConsumePasswordReset_MissingToken(t *testing.T) {
	s, _ := newTestService(t)

	err := s.ConsumePasswordReset(nil, "", "newpass1", "newpass1")
	if !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}
