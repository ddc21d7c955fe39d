package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// ServerConfig contains server-specific configuration
type ServerConfig struct {
	Host            string        `json:"host" yaml:"host"`
	Port            string        `json:"port" yaml:"port"`
	MetricsPort     string        `json:"metrics_port" yaml:"metrics_port"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodySize     int64         `json:"max_body_size" yaml:"max_body_size"`
	MaxFormSize     int64         `json:"max_form_size" yaml:"max_form_size"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            constants.DefaultHost,
		Port:            constants.DefaultPort,
		ReadTimeout:     constants.ServerReadTimeout,
		WriteTimeout:    constants.ServerWriteTimeout,
		IdleTimeout:     constants.ServerIdleTimeout,
		ShutdownTimeout: constants.DefaultShutdownGrace,
		MaxBodySize:     constants.DefaultMaxBodySize,
		MaxFormSize:     constants.DefaultMaxFormSize,
	}
}

// Validate validates the server configuration
func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Host == "" {
		errs = append(errs, errors.New("host cannot be empty"))
	}
	if err := validatePort(s.Port, "port"); err != nil {
		errs = append(errs, err)
	}
	if s.MetricsPort != "" {
		if err := validatePort(s.MetricsPort, "metrics_port"); err != nil {
			errs = append(errs, err)
		}
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("write_timeout must be positive"))
	}
	if s.IdleTimeout <= 0 {
		errs = append(errs, errors.New("idle_timeout must be positive"))
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if s.MaxBodySize <= 0 {
		errs = append(errs, errors.New("max_body_size must be positive"))
	}
	if s.MaxFormSize <= 0 {
		errs = append(errs, errors.New("max_form_size must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// validatePort validates a port string
func validatePort(portStr, fieldName string) error {
	if portStr == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("%s must be a valid port number: %w", fieldName, err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535", fieldName)
	}

	return nil
}

// parsePort accepts only positive integers in the TCP port range
func parsePort(val string) (string, bool) {
	port, err := strconv.Atoi(val)
	if err != nil || port < 1 || port > 65535 {
		return "", false
	}
	return strconv.Itoa(port), true
}
