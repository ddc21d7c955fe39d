package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// Config represents the unified configuration structure. It is resolved once at
// startup and handed to the server by reference; nothing mutates it afterwards.
type Config struct {
	Environment   string              `json:"environment" yaml:"environment"`
	Server        ServerConfig        `json:"server" yaml:"server"`
	Security      SecurityConfig      `json:"security" yaml:"security"`
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
	Auth          AuthConfig          `json:"auth" yaml:"auth"`
	Hotel         HotelConfig         `json:"hotel" yaml:"hotel"`
	HotReload     HotReloadConfig     `json:"hot_reload" yaml:"hot_reload"`
	TLS           TLSConfig           `json:"tls" yaml:"tls"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Environment:   constants.EnvironmentProd,
		Server:        DefaultServerConfig(),
		Security:      DefaultSecurityConfig(),
		Observability: DefaultObservabilityConfig(),
		Auth:          DefaultAuthConfig(),
		Hotel:         DefaultHotelConfig(),
		HotReload:     DefaultHotReloadConfig(),
		TLS:           DefaultTLSConfig(),
	}
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errs []error

	env := strings.ToLower(c.Environment)
	if env != constants.EnvironmentProd && env != constants.EnvironmentDev {
		errs = append(errs, fmt.Errorf("environment must be one of: %s, %s", constants.EnvironmentProd, constants.EnvironmentDev))
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("security: %w", err))
	}
	if err := c.Observability.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("observability: %w", err))
	}
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}
	if err := c.Hotel.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("hotel: %w", err))
	}
	if err := c.HotReload.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("hot_reload: %w", err))
	}
	if err := c.TLS.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tls: %w", err))
	}
	if c.Server.MetricsPort != "" && c.Server.MetricsPort == c.Server.Port {
		errs = append(errs, errors.New("server.port and server.metrics_port cannot be the same"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// IsDevelopment reports whether error details may be exposed to clients
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, constants.EnvironmentDev)
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetMetricsAddress returns the metrics server address, empty when disabled
func (c *Config) GetMetricsAddress() string {
	if c.Server.MetricsPort == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.MetricsPort)
}
