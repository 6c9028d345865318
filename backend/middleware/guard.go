package middleware

import (
	"net/http"
	"strings"

	"auth-portal/backend/handlers"
)

type pathClass int

const (
	pathPublic pathClass = iota
	pathPrivate
	pathAuthEntry
)

// classify buckets a request path for the route guard. The JSON API,
// static assets and the favicon are excluded from evaluation entirely.
func classify(path string) (pathClass, bool) {
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/static/") || path == "/favicon.ico" {
		return pathPublic, false
	}
	switch path {
	case "/my-account", "/change-password":
		return pathPrivate, true
	case "/login", "/register":
		return pathAuthEntry, true
	}
	return pathPublic, true
}

// RouteGuard is evaluated before any page handler: anonymous requests to
// private pages bounce to the login page, authenticated requests to the
// auth entry pages bounce to the account home. Everything else passes
// through unchanged.
func RouteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class, guarded := classify(r.URL.Path)
		if !guarded {
			next.ServeHTTP(w, r)
			return
		}

		authenticated := handlers.CurrentPrincipal(r) != nil
		switch {
		case !authenticated && class == pathPrivate:
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		case authenticated && class == pathAuthEntry:
			http.Redirect(w, r, "/my-account", http.StatusSeeOther)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
