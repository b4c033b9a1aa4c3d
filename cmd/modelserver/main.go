// modelserver serves skeletal model assets over HTTP for inspection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/tlj-engine/internal/assets"
	"github.com/Faultbox/tlj-engine/internal/config"
	"github.com/Faultbox/tlj-engine/internal/logger"
	"github.com/Faultbox/tlj-engine/internal/web"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	err = logger.InitWithOptions(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: os.Stdout,
		File:    fileConfig(cfg.Logging.LogFile),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== model server ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	mgr := assets.NewManager(logger.Named("assets"))
	defer mgr.Close()

	for _, path := range cfg.Data.Archives {
		if err := mgr.AddArchive(path); err != nil {
			logger.Warn("skipping archive", zap.String("path", path), zap.Error(err))
		}
	}
	for _, dir := range cfg.Data.Dirs {
		if err := mgr.AddDir(dir); err != nil {
			logger.Warn("skipping asset dir", zap.String("path", dir), zap.Error(err))
		}
	}

	opts := web.Options{
		DefaultFacing: cfg.Picking.DefaultFacing,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
	}
	if cfg.Server.RequestLog {
		opts.RequestLog = logger.Writer("http")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(mgr, logger.Named("web"), opts)
	if err := srv.ListenAndServe(ctx, cfg.Server.Listen); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server stopped", zap.Any("stats", mgr.Stats()))
}

func fileConfig(path string) logger.FileConfig {
	if path == "" {
		return logger.FileConfig{}
	}
	return logger.DefaultFileConfig(path)
}
