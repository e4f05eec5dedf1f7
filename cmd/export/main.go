// Command export connects to the skillkeeper database, runs pending
// migrations and uploads a JSON snapshot of all stored player progression to
// the configured S3 bucket.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/skillkeeper/internal/config"
	"github.com/dmitrijs2005/skillkeeper/internal/export"
	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
	"github.com/dmitrijs2005/skillkeeper/internal/storage"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

func main() {
	if err := run(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadConfig()

	handler, err := logging.NewHandler(slog.LevelInfo, logging.FileOptions{
		Dir:        cfg.LogDir,
		FileName:   "export.log",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 14,
	})
	if err != nil {
		return err
	}
	logger := logging.NewSlogLogger(slog.New(handler))

	reg := registry.New()
	reg.RegisterDefaults()

	// Offline job: no sessions exist, an empty manager satisfies the
	// online-skip check trivially.
	users := user.NewManager()

	repo, err := storage.Open(ctx, cfg.DatabaseDSN, reg, users, storage.Options{
		SaveBlankProfiles: cfg.SaveBlankProfiles,
	}, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Conn().PingContext(ctx); err != nil {
		return fmt.Errorf("database ping error: %w", err)
	}

	exporter := export.NewExporter(repo, reg, cfg, logger)

	key, err := exporter.Run(ctx, false)
	if err != nil {
		return err
	}

	logger.Info(ctx, "export finished", "key", key)
	return nil
}
