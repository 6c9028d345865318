package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"auth-portal/backend/auth"
	"auth-portal/backend/config"
	"auth-portal/backend/database"
	"auth-portal/backend/handlers"
	"auth-portal/backend/logger"
	"auth-portal/backend/mailer"
	"auth-portal/backend/middleware"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Initialize session store with configured secret and timeout
	if err := handlers.InitSession(); err != nil {
		log.Fatal("Failed to init session:", err)
	}

	if err := database.Init(); err != nil {
		log.Fatal("Failed to init database:", err)
	}

	// Initialize structured logging
	slog.SetDefault(slog.New(logger.NewDBHandler(database.DB)))
	go logger.CleanupOldLogs(database.DB, 48*time.Hour) // Keep logs for 2 days

	// Workflow service over the shared DB handle
	svc := auth.NewService(database.DB, mailer.NewSMTP(config.C.SMTP), config.C.TOTPIssuer, config.C.PublicURL)
	handlers.InitAuth(svc)

	// Rate limiter for auth endpoints (10 requests per minute)
	authRateLimiter := middleware.NewRateLimiter(10, time.Minute)

	slog.Info("server starting", "source", "main", "listen", config.C.Listen, "public_url", config.C.PublicURL)

	mux := http.NewServeMux()

	// Health check (unauthenticated, for load balancers)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Pages (guarded by the route guard wrapper below)
	mux.HandleFunc("GET /login", handlers.LoginPage)
	mux.HandleFunc("GET /register", handlers.RegisterPage)
	mux.HandleFunc("GET /my-account", handlers.MyAccountPage)
	mux.HandleFunc("GET /change-password", handlers.ChangePasswordPage)
	mux.HandleFunc("GET /password-reset", handlers.PasswordResetPage)
	mux.HandleFunc("GET /update-password", handlers.UpdatePasswordPage)

	// Auth actions (public, rate limited)
	mux.HandleFunc("POST /api/register", authRateLimiter.LimitFunc(handlers.Register))
	mux.HandleFunc("POST /api/pre-login-check", authRateLimiter.LimitFunc(handlers.PreLoginCheck))
	mux.HandleFunc("POST /api/login", authRateLimiter.LimitFunc(handlers.Login))
	mux.HandleFunc("POST /api/logout", handlers.Logout)
	mux.HandleFunc("POST /api/password-reset", authRateLimiter.LimitFunc(handlers.RequestPasswordReset))
	mux.HandleFunc("POST /api/update-password", authRateLimiter.LimitFunc(handlers.ConsumePasswordReset))

	// Session-scoped actions
	mux.HandleFunc("POST /api/change-password", handlers.ChangePassword)
	mux.HandleFunc("POST /api/2fa/generate", handlers.GenerateTwoFactorSecret)
	mux.HandleFunc("POST /api/2fa/activate", handlers.ActivateTwoFactor)
	mux.HandleFunc("POST /api/2fa/deactivate", handlers.DeactivateTwoFactor)

	// Route guard, CSRF and security headers wrap all routes
	csrf := middleware.NewCSRFProtection(config.C.Session.Secret)
	handler := middleware.SecurityHeaders(csrf.Protect(middleware.RouteGuard(mux)))

	fmt.Printf("Server running at %s (public: %s)\n", config.C.Listen, config.C.PublicURL)
	if config.C.TLS.Enabled {
		slog.Info("starting server with TLS", "source", "main")
		log.Fatal(http.ListenAndServeTLS(config.C.Listen, config.C.TLS.Cert, config.C.TLS.Key, handler))
	} else {
		log.Fatal(http.ListenAndServe(config.C.Listen, handler))
	}
}
