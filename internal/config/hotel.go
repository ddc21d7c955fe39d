package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// AuthConfig configures the mock authentication routes
type AuthConfig struct {
	JWTSecret string        `json:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl" yaml:"token_ttl"`
	Issuer    string        `json:"issuer" yaml:"issuer"`
	DemoUsers []DemoUser    `json:"demo_users" yaml:"demo_users"`
}

// DemoUser is an account accepted by the login route
type DemoUser struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Email    string `json:"email" yaml:"email"`
	FullName string `json:"full_name" yaml:"full_name"`
	Role     string `json:"role" yaml:"role"`
}

// HotelConfig configures the mock hotel routes
type HotelConfig struct {
	CatalogFile string        `json:"catalog_file" yaml:"catalog_file"`
	PrebookTTL  time.Duration `json:"prebook_ttl" yaml:"prebook_ttl"`
	MaxNights   int           `json:"max_nights" yaml:"max_nights"`
}

// HotReloadConfig represents hot reload configuration for the hotel catalog
type HotReloadConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

// DefaultAuthConfig returns default authentication configuration
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: constants.DefaultJWTSecret,
		TokenTTL:  constants.DefaultJWTTTL,
		Issuer:    "hotel-booking-mock",
		DemoUsers: []DemoUser{
			{
				Username: "demo",
				Password: "demo123",
				Email:    "demo@hotelmock.dev",
				FullName: "Demo User",
				Role:     "customer",
			},
			{
				Username: "agent",
				Password: "agent123",
				Email:    "agent@hotelmock.dev",
				FullName: "Travel Agent",
				Role:     "agent",
			},
		},
	}
}

// DefaultHotelConfig returns default hotel configuration
func DefaultHotelConfig() HotelConfig {
	return HotelConfig{
		PrebookTTL: constants.DefaultPrebookTTL,
		MaxNights:  30,
	}
}

// DefaultHotReloadConfig returns default hot reload configuration
func DefaultHotReloadConfig() HotReloadConfig {
	return HotReloadConfig{
		Enabled:  true,
		Debounce: 500 * time.Millisecond,
	}
}

// Validate validates the authentication configuration
func (a *AuthConfig) Validate() error {
	var errs []error

	if a.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret cannot be empty"))
	}
	if a.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	seen := make(map[string]bool, len(a.DemoUsers))
	for i, u := range a.DemoUsers {
		if u.Username == "" || u.Password == "" {
			errs = append(errs, fmt.Errorf("demo_users[%d]: username and password are required", i))
			continue
		}
		if seen[u.Username] {
			errs = append(errs, fmt.Errorf("demo_users[%d]: duplicate username %q", i, u.Username))
		}
		seen[u.Username] = true
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate validates the hotel configuration
func (h *HotelConfig) Validate() error {
	var errs []error

	if h.PrebookTTL <= 0 {
		errs = append(errs, errors.New("prebook_ttl must be positive"))
	}
	if h.MaxNights <= 0 {
		errs = append(errs, errors.New("max_nights must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate validates hot reload configuration
func (h HotReloadConfig) Validate() error {
	if h.Debounce < 0 {
		return fmt.Errorf("debounce must be non-negative")
	}
	return nil
}
