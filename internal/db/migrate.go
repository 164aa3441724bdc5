package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

// RunMigrations applies all pending SQL migrations from migrationsDir against
// the database at databaseURL (postgres:// form).
func RunMigrations(databaseURL, migrationsDir string, logger zerolog.Logger) error {
	// golang-migrate selects its pgx/v5 driver via the pgx5 scheme.
	url := strings.Replace(databaseURL, "postgres://", "pgx5://", 1)

	m, err := migrate.New("file://"+migrationsDir, url)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		logger.Warn().Uint("version", version).Msg("Database migration state is dirty")
	} else {
		logger.Info().Uint("version", version).Msg("Database migrations applied")
	}

	return nil
}
