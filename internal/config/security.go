package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	Headers   SecurityHeaders `json:"headers" yaml:"headers"`
	CORS      CORSConfig      `json:"cors" yaml:"cors"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
}

// SecurityHeaders contains security headers configuration
type SecurityHeaders struct {
	Enabled               bool     `json:"enabled" yaml:"enabled"`
	HSTSMaxAge            int      `json:"hsts_max_age" yaml:"hsts_max_age"`
	ContentSecurityPolicy string   `json:"content_security_policy" yaml:"content_security_policy"`
	AllowedHosts          []string `json:"allowed_hosts" yaml:"allowed_hosts"`
}

// CORSConfig contains CORS configuration
type CORSConfig struct {
	Enabled          bool     `json:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers" yaml:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `json:"max_age" yaml:"max_age"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled" yaml:"enabled"`
	Strategy        string        `json:"strategy" yaml:"strategy"`
	Global          *RateLimit    `json:"global" yaml:"global"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
	MaxCacheSize    int           `json:"max_cache_size" yaml:"max_cache_size"`
}

// RateLimit contains rate limit settings for a specific entity
type RateLimit struct {
	RequestsPerSecond int `json:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int `json:"burst_size" yaml:"burst_size"`
}

// DefaultSecurityConfig returns default security configuration
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		Headers:   DefaultSecurityHeaders(),
		CORS:      DefaultCORSConfig(),
		RateLimit: DefaultRateLimitConfig(),
	}
}

// DefaultSecurityHeaders returns default security headers
func DefaultSecurityHeaders() SecurityHeaders {
	return SecurityHeaders{
		Enabled:               true,
		HSTSMaxAge:            15552000, // 180 days
		ContentSecurityPolicy: "default-src 'self';base-uri 'self';font-src 'self' https: data:;form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';upgrade-insecure-requests",
	}
}

// DefaultCORSConfig returns default CORS configuration
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			constants.MethodGET, constants.MethodHEAD, constants.MethodPUT,
			constants.MethodPATCH, constants.MethodPOST, constants.MethodDELETE,
		},
		AllowCredentials: false,
	}
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:  false,
		Strategy: constants.RateLimitStrategyIP,
		Global: &RateLimit{
			RequestsPerSecond: 100,
			BurstSize:         200,
		},
		CleanupInterval: constants.RateLimitCleanupInterval,
		MaxCacheSize:    constants.RateLimitMaxCacheSize,
	}
}

// Validate validates the security configuration
func (s *SecurityConfig) Validate() error {
	var errs []error

	if err := s.Headers.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("headers: %w", err))
	}
	if err := s.CORS.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cors: %w", err))
	}
	if err := s.RateLimit.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("rate_limit: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate validates the security headers configuration
func (h *SecurityHeaders) Validate() error {
	if h.Enabled && h.HSTSMaxAge < 0 {
		return fmt.Errorf("hsts_max_age must be non-negative")
	}
	return nil
}

// Validate validates the CORS configuration
func (c *CORSConfig) Validate() error {
	if c.Enabled {
		if len(c.AllowedOrigins) == 0 {
			return fmt.Errorf("allowed_origins must not be empty")
		}
		if len(c.AllowedMethods) == 0 {
			return fmt.Errorf("allowed_methods must not be empty")
		}
	}
	return nil
}

// Validate validates the rate limit configuration
func (r *RateLimitConfig) Validate() error {
	if !r.Enabled {
		return nil
	}

	var errs []error
	if r.Strategy != constants.RateLimitStrategyIP {
		errs = append(errs, fmt.Errorf("strategy must be %q", constants.RateLimitStrategyIP))
	}
	if r.Global == nil {
		errs = append(errs, errors.New("global limit is required when rate limiting is enabled"))
	} else if err := r.Global.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("global: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate validates the rate limit configuration for a specific entity
func (l *RateLimit) Validate() error {
	if l.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}
	if l.BurstSize <= 0 {
		return fmt.Errorf("burst_size must be positive")
	}
	return nil
}
