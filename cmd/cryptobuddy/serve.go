package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/api"
	"github.com/sametyasit/cryptobuddy/internal/archive"
	"github.com/sametyasit/cryptobuddy/internal/config"
	"github.com/sametyasit/cryptobuddy/internal/connectivity"
	"github.com/sametyasit/cryptobuddy/internal/logger"
	"github.com/sametyasit/cryptobuddy/internal/market"
	"github.com/sametyasit/cryptobuddy/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CryptoBuddy API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	if !cfg.Metrics.Enabled {
		reg = nil
	}

	svc := market.New(
		market.ConfigFrom(cfg),
		market.BuildProviders(cfg),
		buildConnectivity(cfg),
		reg,
		log,
	)

	if cfg.Archive.Enabled {
		snap, err := buildSnapshotter(cfg)
		if err != nil {
			return fmt.Errorf("configuring archive: %w", err)
		}
		svc.SetSnapshotter(snap)
		log.Info("listing snapshots enabled", zap.String("type", cfg.Archive.Type))
	}

	server := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		AdminAPIKey: os.Getenv("CRYPTOBUDDY_ADMIN_KEY"),
		MetricsPath: cfg.Metrics.Path,
	}, svc, reg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	svc.Wait()
	return nil
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func buildConnectivity(cfg *config.Config) connectivity.Checker {
	if cfg.Connectivity.Disabled {
		return connectivity.Static{Online: true}
	}
	return connectivity.NewProbe(cfg.Connectivity.ProbeTarget)
}

func buildSnapshotter(cfg *config.Config) (*archive.Snapshotter, error) {
	var storage archive.Storage
	var err error
	switch cfg.Archive.Type {
	case "s3":
		storage, err = archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	default:
		storage, err = archive.NewLocalFS(cfg.Archive.Path)
	}
	if err != nil {
		return nil, err
	}
	return archive.NewSnapshotter(storage), nil
}
