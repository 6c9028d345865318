package handlers

import (
	"fmt"
	"net/http"

	"auth-portal/backend/auth"
	"auth-portal/backend/config"
	"auth-portal/backend/database"
	"auth-portal/backend/models"

	"github.com/gorilla/sessions"
)

var Store *sessions.CookieStore

const sessionName = "session"

// InitSession configures the cookie store from config. The secret must be
// set and at least 32 characters.
func InitSession() error {
	secret := config.C.Session.Secret
	if len(secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 characters")
	}
	Store = sessions.NewCookieStore([]byte(secret))
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(config.C.Session.Timeout.Seconds()),
		HttpOnly: true,
		Secure:   config.C.TLS.Enabled,
		SameSite: http.SameSiteLaxMode,
	}
	return nil
}

// CurrentPrincipal resolves the session claims for the request, or nil for
// an anonymous one. The user id is re-checked against the users table so a
// deleted account cannot keep riding an old cookie.
// Variable to allow mocking in tests.
var CurrentPrincipal = func(r *http.Request) *auth.Principal {
	session, err := Store.Get(r, sessionName)
	if err != nil {
		return nil
	}
	userID, ok := session.Values["user_id"].(uint)
	if !ok {
		return nil
	}
	email, _ := session.Values["email"].(string)
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return nil
	}
	return &auth.Principal{UserID: userID, Email: email}
}

// mintSession stores the verified claims as the session principal.
func mintSession(w http.ResponseWriter, r *http.Request, p *auth.Principal) {
	session, _ := Store.Get(r, sessionName)
	session.Values["user_id"] = p.UserID
	session.Values["email"] = p.Email
	session.Save(r, w)
}

// clearSession drops all claims and expires the cookie.
func clearSession(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, sessionName)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	session.Save(r, w)
}
