package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// CLIFlags holds the command line flags that can override configuration.
// Only flags explicitly set on the command line take effect.
type CLIFlags struct {
	fs *pflag.FlagSet

	ConfigFile      *string
	Environment     *string
	Host            *string
	Port            *string
	MetricsPort     *string
	MaxBodySize     *int64
	ShutdownTimeout *time.Duration
	LogLevel        *string
	LogFormat       *string
	JWTSecret       *string
	CatalogFile     *string
	HotReload       *bool
	RateLimit       *bool
	RateLimitRPS    *int
	Tracing         *bool
	TLSCertFile     *string
	TLSKeyFile      *string
}

// NewCLIFlags registers the configuration flags on fs
func NewCLIFlags(fs *pflag.FlagSet) *CLIFlags {
	return &CLIFlags{
		fs:              fs,
		ConfigFile:      fs.StringP("config", "c", "", "Path to configuration file (YAML or JSON)"),
		Environment:     fs.String("env", constants.EnvironmentProd, "Runtime environment: production or development"),
		Host:            fs.String("host", constants.DefaultHost, "Host to listen on"),
		Port:            fs.StringP("port", "p", constants.DefaultPort, "Port to listen on"),
		MetricsPort:     fs.String("metrics-port", "", "Port for a dedicated metrics listener (disabled when empty)"),
		MaxBodySize:     fs.Int64("max-body-size", constants.DefaultMaxBodySize, "Maximum JSON request body size in bytes"),
		ShutdownTimeout: fs.Duration("shutdown-timeout", constants.DefaultShutdownGrace, "Graceful shutdown timeout"),
		LogLevel:        fs.String("log-level", "info", "Log level: debug, info, warn, error"),
		LogFormat:       fs.String("log-format", "json", "Log format: json or console"),
		JWTSecret:       fs.String("jwt-secret", "", "Secret used to sign mock access tokens"),
		CatalogFile:     fs.String("catalog-file", "", "Hotel catalog YAML file (embedded catalog when empty)"),
		HotReload:       fs.Bool("hot-reload", true, "Reload the hotel catalog file when it changes"),
		RateLimit:       fs.Bool("rate-limit", false, "Enable per-IP rate limiting on /api routes"),
		RateLimitRPS:    fs.Int("rate-limit-rps", 100, "Requests per second allowed per client"),
		Tracing:         fs.Bool("tracing", false, "Export OpenTelemetry traces to stdout"),
		TLSCertFile:     fs.String("tls-cert-file", "", "TLS certificate file"),
		TLSKeyFile:      fs.String("tls-key-file", "", "TLS private key file"),
	}
}

// ConfigFilePath returns the config file named by flag or environment
func (f *CLIFlags) ConfigFilePath() string {
	if f != nil && f.changed("config") {
		return *f.ConfigFile
	}
	return os.Getenv(constants.EnvConfigFile)
}

func (f *CLIFlags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// LoadConfig loads configuration with precedence:
// 1. Explicit CLI flags (highest priority)
// 2. Environment variables
// 3. Configuration file values
// 4. Default configuration values (lowest priority)
func LoadConfig(configFile string, cliFlags *CLIFlags) (*Config, error) {
	config := DefaultConfig()

	if configFile != "" {
		if err := loadFromFile(configFile, config); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	loadFromEnv(config)

	if cliFlags != nil {
		overrideWithCLI(config, cliFlags)
	}

	if config.IsDevelopment() {
		config.Observability.Logging.Development = true
	}
	config.Observability.Tracing.Environment = config.Environment

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML or JSON file over config, so keys the file
// omits keep their current values
func loadFromFile(filePath string, config *Config) error {
	if !filepath.IsAbs(filePath) {
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
		}
		filePath = absPath
	}

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	ext := filepath.Ext(filePath)
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".json":
		err = json.Unmarshal(data, config)
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}
	config.Environment = strings.ToLower(config.Environment)

	return nil
}

// loadFromEnv loads configuration from environment variables. Values that
// fail to parse are ignored and the previous value is kept.
func loadFromEnv(config *Config) {
	if val := os.Getenv(constants.EnvPort); val != "" {
		if port, ok := parsePort(strings.TrimSpace(val)); ok {
			config.Server.Port = port
		}
	}
	if val := os.Getenv(constants.EnvHost); val != "" {
		config.Server.Host = val
	}
	if val := os.Getenv(constants.EnvEnvironment); val != "" {
		config.Environment = strings.ToLower(val)
	}
	if val := os.Getenv(constants.EnvLogLevel); val != "" {
		config.Observability.Logging.Level = val
	}
	if val := os.Getenv(constants.EnvLogFormat); val != "" {
		config.Observability.Logging.Format = val
	}
	if val := os.Getenv(constants.EnvMaxBodySize); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil && size > 0 {
			config.Server.MaxBodySize = size
		}
	}
	if val := os.Getenv(constants.EnvMetricsPort); val != "" {
		if port, ok := parsePort(val); ok {
			config.Server.MetricsPort = port
		}
	}
	if val := os.Getenv(constants.EnvShutdownTimeout); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.Server.ShutdownTimeout = duration
		}
	}
	if val := os.Getenv(constants.EnvJWTSecret); val != "" {
		config.Auth.JWTSecret = val
	}
	if val := os.Getenv(constants.EnvJWTTTL); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.Auth.TokenTTL = duration
		}
	}
	if val := os.Getenv(constants.EnvCatalogFile); val != "" {
		config.Hotel.CatalogFile = val
	}
	if val := os.Getenv(constants.EnvHotReload); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			config.HotReload.Enabled = enabled
		}
	}
	if val := os.Getenv(constants.EnvRateLimitEnabled); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			config.Security.RateLimit.Enabled = enabled
		}
	}
	if val := os.Getenv(constants.EnvRateLimitRPS); val != "" {
		if rps, err := strconv.Atoi(val); err == nil {
			setGlobalRPS(config, rps)
		}
	}
	if val := os.Getenv(constants.EnvTracingEnabled); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			config.Observability.Tracing.Enabled = enabled
		}
	}
	if val := os.Getenv(constants.EnvTLSCertFile); val != "" {
		config.TLS.CertFile = val
	}
	if val := os.Getenv(constants.EnvTLSKeyFile); val != "" {
		config.TLS.KeyFile = val
	}
	if config.TLS.CertFile != "" && config.TLS.KeyFile != "" {
		config.TLS.Enabled = true
	}
}

// overrideWithCLI overrides configuration with CLI flag values
func overrideWithCLI(config *Config, flags *CLIFlags) {
	if flags.changed("env") {
		config.Environment = strings.ToLower(*flags.Environment)
	}
	if flags.changed("host") {
		config.Server.Host = *flags.Host
	}
	if flags.changed("port") {
		config.Server.Port = *flags.Port
	}
	if flags.changed("metrics-port") {
		config.Server.MetricsPort = *flags.MetricsPort
	}
	if flags.changed("max-body-size") {
		config.Server.MaxBodySize = *flags.MaxBodySize
	}
	if flags.changed("shutdown-timeout") {
		config.Server.ShutdownTimeout = *flags.ShutdownTimeout
	}
	if flags.changed("log-level") {
		config.Observability.Logging.Level = *flags.LogLevel
	}
	if flags.changed("log-format") {
		config.Observability.Logging.Format = *flags.LogFormat
	}
	if flags.changed("jwt-secret") {
		config.Auth.JWTSecret = *flags.JWTSecret
	}
	if flags.changed("catalog-file") {
		config.Hotel.CatalogFile = *flags.CatalogFile
	}
	if flags.changed("hot-reload") {
		config.HotReload.Enabled = *flags.HotReload
	}
	if flags.changed("rate-limit") {
		config.Security.RateLimit.Enabled = *flags.RateLimit
	}
	if flags.changed("rate-limit-rps") {
		setGlobalRPS(config, *flags.RateLimitRPS)
	}
	if flags.changed("tracing") {
		config.Observability.Tracing.Enabled = *flags.Tracing
	}
	if flags.changed("tls-cert-file") {
		config.TLS.CertFile = *flags.TLSCertFile
	}
	if flags.changed("tls-key-file") {
		config.TLS.KeyFile = *flags.TLSKeyFile
	}
	if config.TLS.CertFile != "" && config.TLS.KeyFile != "" {
		config.TLS.Enabled = true
	}
}

func setGlobalRPS(config *Config, rps int) {
	if config.Security.RateLimit.Global == nil {
		config.Security.RateLimit.Global = &RateLimit{
			RequestsPerSecond: rps,
			BurstSize:         rps * 2,
		}
		return
	}
	config.Security.RateLimit.Global.RequestsPerSecond = rps
	if config.Security.RateLimit.Global.BurstSize < rps {
		config.Security.RateLimit.Global.BurstSize = rps
	}
}
