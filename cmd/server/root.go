package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/GriffinCanCode/weaverest/internal/infrastructure/config"
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/logging"
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/server"
)

const defaultEnvFile = ".env"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weaverest [serve_dir]",
		Short: "Serve a directory tree as a JSON/REST resource",
		Long: `weaverest exposes a directory as a JSON/REST resource. GET returns file
metadata and content or directory listings, POST appends to files, PUT creates
or replaces files and directories, and DELETE removes files and empty
directories.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "YAML configuration file")
	flags.String("env-file", defaultEnvFile, "dotenv file loaded into the environment")
	flags.StringP("port", "p", "", "port to listen on (default 8000)")
	flags.String("address", "", "address to bind (default all interfaces)")
	flags.Bool("debug", false, "enable debug mode")
	flags.Int64("max-size", 0, "largest file whose data GET returns, in bytes")
	flags.String("encoding", "", "text encoding of file names and data (default utf-8)")
	flags.CountP("verbose", "v", "increase log verbosity")

	return cmd
}

// loadConfig layers defaults, the YAML file, the dotenv file, the
// environment and finally explicit flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("env-file") {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	configFile, _ := flags.GetString("config")
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, err
	}

	if len(args) == 1 {
		cfg.Files.ServeDir = args[0]
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetString("port")
	}
	if flags.Changed("address") {
		cfg.Server.Host, _ = flags.GetString("address")
	}
	if flags.Changed("debug") {
		debug, _ := flags.GetBool("debug")
		cfg.Server.Debug = debug
		cfg.Logging.Development = debug
	}
	if flags.Changed("max-size") {
		cfg.Files.MaxSize, _ = flags.GetInt64("max-size")
	}
	if flags.Changed("encoding") {
		cfg.Files.Encoding, _ = flags.GetString("encoding")
	}
	if flags.Changed("verbose") {
		count, _ := flags.GetCount("verbose")
		cfg.Logging.Level = logging.LevelForVerbosity(count)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	umask, err := cfg.Files.UmaskBits()
	if err != nil {
		return err
	}
	unix.Umask(umask)

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	logger := srv.Logger()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
			_ = srv.Shutdown(context.Background())
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
