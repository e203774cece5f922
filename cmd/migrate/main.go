package main

import (
	"database/sql"
	"flag"

	"storefront-core/internal/config"
	"storefront-core/internal/db"
	"storefront-core/internal/logger"

	"go.uber.org/zap"
)

var openDBFunc = db.NewDatabase

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "", "migrations directory (defaults to MIGRATIONS_DIR)")
	flag.Parse()

	if err := run(*mode, *dir); err != nil {
		logger.L().Fatal("migration failed", zap.Error(err))
	}
}

func run(modeFlag, dir string) error {
	mode, err := db.ParseMigrationMode(modeFlag)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.MigrationsDir
	}

	database, err := openDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	return migrate(database, dir, mode)
}

var migrate = func(database *sql.DB, dir string, mode db.MigrationMode) error {
	log := logger.L().With(zap.String("dir", dir), zap.String("mode", string(mode)))

	log.Info("applying migrations")
	if err := db.Migrate(database, dir, mode); err != nil {
		return err
	}
	log.Info("migrations complete")
	return nil
}
