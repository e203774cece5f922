package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type MigrationMode string

const (
	MigrateUp   MigrationMode = "up"
	MigrateDown MigrationMode = "down"
)

var ErrUnknownMigrationMode = errors.New("unknown migration mode (use 'up' or 'down')")

// ParseMigrationMode validates a -mode flag value.
func ParseMigrationMode(s string) (MigrationMode, error) {
	switch m := MigrationMode(s); m {
	case MigrateUp, MigrateDown:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMigrationMode, s)
	}
}

// Migrate applies every pending migration from dir (up) or rolls back the
// most recent one (down). Having nothing to do is not an error.
func Migrate(db *sql.DB, dir string, mode MigrationMode) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	switch mode {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMigrationMode, mode)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}
