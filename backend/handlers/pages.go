package handlers

import (
	"fmt"
	"net/http"
)

// The UI proper is rendered by a separate frontend consuming the /api
// endpoints; these shells exist so the guarded page routes resolve.
func page(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body><h1>%s</h1></body></html>", title, title)
	}
}

var (
	LoginPage          = page("Login")
	RegisterPage       = page("Register")
	MyAccountPage      = page("My Account")
	ChangePasswordPage = page("Change Password")
	PasswordResetPage  = page("Password Reset")
	UpdatePasswordPage = page("Update Password")
)
