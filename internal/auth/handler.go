// Package auth serves the mock authentication routes: demo logins that
// issue HS256 tokens and a profile endpoint guarded by them.
package auth

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/leslieo2/hotel-booking-mock/internal/apierror"
	"github.com/leslieo2/hotel-booking-mock/internal/binding"
	"github.com/leslieo2/hotel-booking-mock/internal/config"
	"github.com/leslieo2/hotel-booking-mock/internal/router"
)

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
	ExpiresAt string `json:"expires_at"`
	User      User   `json:"user"`
}

// Handler implements router.Group for /api/auth
type Handler struct {
	jwt    *JWTManager
	users  *UserStore
	logger *zap.Logger
}

// NewHandler builds the auth routes from configuration
func NewHandler(cfg config.AuthConfig, logger *zap.Logger) *Handler {
	return &Handler{
		jwt:    NewJWTManager(cfg.JWTSecret, cfg.TokenTTL, cfg.Issuer),
		users:  NewUserStore(cfg.DemoUsers),
		logger: logger,
	}
}

func (h *Handler) Register(r *router.Router) {
	r.Post("/login", h.login)
	r.Get("/demo-credentials", h.demoCredentials)

	protected := r.Group("/")
	protected.Use(RequireToken(h.jwt))
	protected.Get("/profile", h.profile)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := binding.Bind(r, &req); err != nil {
		return err
	}

	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		h.logger.Info("Login rejected", zap.String("username", req.Username))
		e := apierror.Unauthorized("Invalid username or password")
		e.Err = err
		return e
	}

	token, expiresAt, err := h.jwt.GenerateToken(user)
	if err != nil {
		return apierror.Internal(err)
	}

	h.logger.Info("Login succeeded", zap.String("username", user.Username), zap.String("role", user.Role))
	return binding.JSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(time.Until(expiresAt).Seconds()),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User:      user,
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) error {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return apierror.Unauthorized("Authentication required")
	}
	user, ok := h.users.Lookup(claims.Username)
	if !ok {
		// Token signed for an account that is no longer configured
		return apierror.Unauthorized("Unknown user")
	}
	return binding.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

func (h *Handler) demoCredentials(w http.ResponseWriter, r *http.Request) error {
	return binding.JSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"credentials": h.users.Credentials(),
	})
}
