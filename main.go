package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/leslieo2/hotel-booking-mock/internal/config"
	"github.com/leslieo2/hotel-booking-mock/internal/constants"
	"github.com/leslieo2/hotel-booking-mock/internal/observability"
	"github.com/leslieo2/hotel-booking-mock/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("hotel-booking-mock", pflag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }
	cliFlags := config.NewCLIFlags(fs)
	showVersion := fs.BoolP("version", "v", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if *showVersion {
		fmt.Printf("%s %s\n", constants.ServiceName, constants.ServiceVersion)
		return 0
	}

	// Load configuration with precedence (CLI > Env > File > Defaults)
	cfg, err := config.LoadConfig(cliFlags.ConfigFilePath(), cliFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := observability.NewLogger(cfg.Observability.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	srv, err := server.New(cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to create server", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		var startupErr *server.StartupError
		if errors.As(err, &startupErr) {
			logger.Error("Server failed to start",
				zap.String("stage", startupErr.Op),
				zap.String("address", cfg.GetServerAddress()),
				zap.Error(startupErr.Err),
			)
		} else {
			logger.Error("Server stopped with error", zap.Error(err))
		}
		return 1
	}

	logger.Info("Server stopped")
	return 0
}

// printUsage prints the usage information
func printUsage(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nMock hotel booking API: search, prebook, book, cancel and edit under /api/hotel,\n")
	fmt.Fprintf(os.Stderr, "login and profile under /api/auth.\n")
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
	fmt.Fprintf(os.Stderr, "  %s, %s, %s, %s\n", constants.EnvPort, constants.EnvHost, constants.EnvEnvironment, constants.EnvConfigFile)
	fmt.Fprintf(os.Stderr, "  %s, %s, %s\n", constants.EnvLogLevel, constants.EnvLogFormat, constants.EnvMaxBodySize)
	fmt.Fprintf(os.Stderr, "  %s, %s\n", constants.EnvMetricsPort, constants.EnvShutdownTimeout)
	fmt.Fprintf(os.Stderr, "  %s, %s\n", constants.EnvJWTSecret, constants.EnvJWTTTL)
	fmt.Fprintf(os.Stderr, "  %s, %s\n", constants.EnvCatalogFile, constants.EnvHotReload)
	fmt.Fprintf(os.Stderr, "  %s, %s, %s\n", constants.EnvRateLimitEnabled, constants.EnvRateLimitRPS, constants.EnvTracingEnabled)
	fmt.Fprintf(os.Stderr, "  %s, %s\n", constants.EnvTLSCertFile, constants.EnvTLSKeyFile)
	fmt.Fprintf(os.Stderr, "\nExample usage:\n")
	fmt.Fprintf(os.Stderr, "  %s\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s --port 8081 --env development --log-format console\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s --catalog-file ./hotels.yaml --rate-limit --rate-limit-rps 20\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  PORT=8081 %s\n", os.Args[0])
}
