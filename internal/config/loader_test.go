package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		constants.EnvPort, constants.EnvHost, constants.EnvEnvironment, constants.EnvConfigFile,
		constants.EnvLogLevel, constants.EnvLogFormat, constants.EnvMaxBodySize,
		constants.EnvMetricsPort, constants.EnvShutdownTimeout, constants.EnvJWTSecret,
		constants.EnvJWTTTL, constants.EnvCatalogFile, constants.EnvHotReload,
		constants.EnvRateLimitEnabled, constants.EnvRateLimitRPS, constants.EnvTracingEnabled,
		constants.EnvTLSCertFile, constants.EnvTLSKeyFile,
	} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *CLIFlags {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := NewCLIFlags(fs)
	require.NoError(t, fs.Parse(args))
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Port(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{name: "unset defaults to 3000", env: "", want: "3000"},
		{name: "valid port", env: "8081", want: "8081"},
		{name: "surrounding spaces", env: " 8082 ", want: "8082"},
		{name: "not a number", env: "abc", want: "3000"},
		{name: "zero", env: "0", want: "3000"},
		{name: "negative", env: "-1", want: "3000"},
		{name: "out of range", env: "65536", want: "3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(constants.EnvPort, tt.env)

			cfg, err := LoadConfig("", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Server.Port)
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantErr  bool
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml overrides only the keys it names",
			file: "config.yaml",
			content: `
environment: development
server:
  port: "8081"
  max_body_size: 1024
hotel:
  prebook_ttl: 5m
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8081", cfg.Server.Port)
				assert.Equal(t, int64(1024), cfg.Server.MaxBodySize)
				assert.Equal(t, 5*time.Minute, cfg.Hotel.PrebookTTL)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.True(t, cfg.IsDevelopment())
				assert.True(t, cfg.Observability.Logging.Development)
				assert.True(t, cfg.Security.CORS.Enabled)
			},
		},
		{
			name:    "json file",
			file:    "config.json",
			content: `{"server": {"port": "8082"}, "auth": {"jwt_secret": "from-file"}}`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8082", cfg.Server.Port)
				assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
			},
		},
		{
			name:    "malformed yaml",
			file:    "config.yaml",
			content: `server: {port: "8081"`,
			wantErr: true,
		},
		{
			name:    "unsupported extension",
			file:    "config.toml",
			content: `port = 1`,
			wantErr: true,
		},
		{
			name:    "file values still validated",
			file:    "config.yaml",
			content: `server: {port: "99999"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := writeFile(t, tt.file, tt.content)

			cfg, err := LoadConfig(path, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"), nil)
	assert.ErrorContains(t, err, "failed to load config file")
}

func TestLoadConfig_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv(constants.EnvHost, "127.0.0.1")
	t.Setenv(constants.EnvEnvironment, "DEVELOPMENT")
	t.Setenv(constants.EnvLogLevel, "debug")
	t.Setenv(constants.EnvMaxBodySize, "2048")
	t.Setenv(constants.EnvMetricsPort, "9091")
	t.Setenv(constants.EnvJWTSecret, "env-secret")
	t.Setenv(constants.EnvJWTTTL, "1h")
	t.Setenv(constants.EnvHotReload, "false")
	t.Setenv(constants.EnvRateLimitEnabled, "true")
	t.Setenv(constants.EnvRateLimitRPS, "5")
	t.Setenv(constants.EnvShutdownTimeout, "not-a-duration")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, int64(2048), cfg.Server.MaxBodySize)
	assert.Equal(t, "9091", cfg.Server.MetricsPort)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.HotReload.Enabled)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.Security.RateLimit.Global.RequestsPerSecond)
	assert.Equal(t, constants.DefaultShutdownGrace, cfg.Server.ShutdownTimeout)
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `server: {port: "8081", host: "10.0.0.1"}`)
	t.Setenv(constants.EnvPort, "8082")

	cfg, err := LoadConfig(path, newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "8082", cfg.Server.Port, "env beats file")
	assert.Equal(t, "10.0.0.1", cfg.Server.Host, "file beats defaults")

	cfg, err = LoadConfig(path, newFlags(t, "--port", "8083"))
	require.NoError(t, err)
	assert.Equal(t, "8083", cfg.Server.Port, "flag beats env")
}

func TestLoadConfig_CLIDefaultsDoNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(constants.EnvPort, "8090")

	cfg, err := LoadConfig("", newFlags(t, "--log-level", "warn"))
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
}

func TestLoadConfig_CLIFlags(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(cert, []byte("cert"), 0o600))
	require.NoError(t, os.WriteFile(key, []byte("key"), 0o600))

	cfg, err := LoadConfig("", newFlags(t,
		"--env", "development",
		"--host", "localhost",
		"--metrics-port", "9100",
		"--max-body-size", "4096",
		"--catalog-file", "/tmp/hotels.yaml",
		"--hot-reload=false",
		"--rate-limit",
		"--rate-limit-rps", "7",
		"--tracing",
		"--tls-cert-file", cert,
		"--tls-key-file", key,
	))
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "9100", cfg.Server.MetricsPort)
	assert.Equal(t, int64(4096), cfg.Server.MaxBodySize)
	assert.Equal(t, "/tmp/hotels.yaml", cfg.Hotel.CatalogFile)
	assert.False(t, cfg.HotReload.Enabled)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 7, cfg.Security.RateLimit.Global.RequestsPerSecond)
	assert.True(t, cfg.Observability.Tracing.Enabled)
	assert.Equal(t, "development", cfg.Observability.Tracing.Environment)
	assert.True(t, cfg.TLS.Enabled)
}

func TestCLIFlags_ConfigFilePath(t *testing.T) {
	clearEnv(t)
	t.Setenv(constants.EnvConfigFile, "/etc/hotel-mock.yaml")

	assert.Equal(t, "/etc/hotel-mock.yaml", newFlags(t).ConfigFilePath())
	assert.Equal(t, "local.yaml", newFlags(t, "-c", "local.yaml").ConfigFilePath())
}
