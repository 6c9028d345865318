package handlers

import (
	"testing"
	"time"

	"auth-portal/backend/config"
)

func TestInitSession_FailsOnEmptySecret(t *testing.T) {
	config.C = config.Config{}

	if err := InitSession(); err == nil {
		t.Error("InitSession should fail when session secret is empty")
	}
}

func TestInitSession_FailsOnWeakSecret(t *testing.T) {
	config.C = config.Config{
		Session: config.SessionConfig{Secret: "short"},
	}

	if err := InitSession(); err == nil {
		t.Error("InitSession should fail when session secret is too short")
	}
}

func TestInitSession_SecureCookieFlag(t *testing.T) {
	config.C = config.Config{
		Session: config.SessionConfig{
			Timeout: time.Hour,
			Secret:  "test-secret-key-32-chars-long!!!",
		},
		TLS: config.TLSConfig{Enabled: true},
	}

	if err := InitSession(); err != nil {
		t.Fatalf("InitSession failed: %v", err)
	}

	if !Store.Options.Secure {
		t.Error("Session cookie Secure flag should match TLS.Enabled")
	}
	if Store.Options.MaxAge != int(time.Hour.Seconds()) {
		t.Errorf("Session cookie MaxAge = %d", Store.Options.MaxAge)
	}
}
