package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"greenfield-reports/internal/config"
	"greenfield-reports/internal/database"
	"greenfield-reports/internal/router"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := buildLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		logger.Fatal("create data dir", zap.Error(err))
	}
	if err := ensureDir(cfg.Report.OutputDir); err != nil {
		logger.Fatal("create report output dir", zap.Error(err))
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	// the legacy transform must run before anything touches the store;
	// a failed migration is fatal, operating on a half-migrated schema
	// is not an option
	if err := database.MigrateLegacySchema(db, logger); err != nil {
		logger.Fatal("legacy migration", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	// setup router
	r := router.SetupRouter(cfg, db, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("run server", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(level); err != nil {
			return nil, err
		}
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
