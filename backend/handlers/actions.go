package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"auth-portal/backend/auth"
)

// Svc is the workflow service the handlers delegate to; set once at startup.
var Svc *auth.Service

func InitAuth(svc *auth.Service) {
	Svc = svc
}

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError emits the uniform {error:true, message} failure shape. The
// message comes from the central mapping, never from a raw error.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: true, Message: auth.Message(err)})
}

func statusFor(err error) int {
	var ve *auth.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrOtpRequired),
		errors.Is(err, auth.ErrOtpInvalid),
		errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrAlreadyLoggedIn):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Register(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")

	err := Svc.Register(email, r.FormValue("password"), r.FormValue("passwordConfirm"))
	if err != nil {
		slog.Warn("registration failed", "source", "auth", "email", email, "reason", auth.Message(err))
		writeError(w, err)
		return
	}

	slog.Info("user registered", "source", "auth", "email", email)
	w.WriteHeader(http.StatusNoContent)
}

// PreLoginCheck is step one of the two-step login: it reports whether the
// account is 2FA-gated so the client knows to prompt for an OTP.
func PreLoginCheck(w http.ResponseWriter, r *http.Request) {
	activated, err := Svc.PreLoginCheck(r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"twoFactorActivated": activated})
}

func Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")

	principal, err := Svc.Login(email, r.FormValue("password"), r.FormValue("otp"))
	if err != nil {
		slog.Warn("login failed", "source", "auth", "email", email, "reason", auth.Message(err))
		writeError(w, err)
		return
	}

	mintSession(w, r, principal)
	slog.Info("user logged in", "source", "auth", "user_id", principal.UserID, "email", principal.Email)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/my-account"})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	if p := CurrentPrincipal(r); p != nil {
		slog.Info("user logged out", "source", "auth", "user_id", p.UserID)
	}
	clearSession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func ChangePassword(w http.ResponseWriter, r *http.Request) {
	p := CurrentPrincipal(r)

	err := Svc.ChangePassword(p,
		r.FormValue("currentPassword"),
		r.FormValue("password"),
		r.FormValue("passwordConfirm"))
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("password changed", "source", "auth", "user_id", p.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset answers identically whether or not the address has
// an account, so the endpoint cannot confirm account existence.
func RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	err := Svc.RequestPasswordReset(CurrentPrincipal(r), r.FormValue("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ConsumePasswordReset(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	err := Svc.ConsumePasswordReset(CurrentPrincipal(r), token,
		r.FormValue("password"), r.FormValue("passwordConfirm"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidOrExpiredToken) {
			// Send the client back to the update form with the token stripped.
			http.Redirect(w, r, "/update-password?token=", http.StatusSeeOther)
			return
		}
		writeError(w, err)
		return
	}

	slog.Info("password reset consumed", "source", "auth")
	w.WriteHeader(http.StatusNoContent)
}

func GenerateTwoFactorSecret(w http.ResponseWriter, r *http.Request) {
	uri, err := Svc.GenerateTwoFactorSecret(CurrentPrincipal(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"twoFactorSecret": uri})
}

func ActivateTwoFactor(w http.ResponseWriter, r *http.Request) {
	p := CurrentPrincipal(r)

	if err := Svc.ActivateTwoFactor(p, r.FormValue("otp")); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("2FA activated", "source", "auth", "user_id", p.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func DeactivateTwoFactor(w http.ResponseWriter, r *http.Request) {
	p := CurrentPrincipal(r)

	if err := Svc.DeactivateTwoFactor(p); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("2FA deactivated", "source", "auth", "user_id", p.UserID)
	w.WriteHeader(http.StatusNoContent)
}
