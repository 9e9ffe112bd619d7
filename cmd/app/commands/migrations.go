package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/bluegreen/internal/config"
)

// RunMigrations applies the pending SQL migrations of storeDriver. MongoDB
// and the memory store need none.
func RunMigrations(logger *slog.Logger, storeDriver, connectionString string) error {
	var migrationsPath string
	switch storeDriver {
	case config.StorePostgres:
		migrationsPath = "file://migrations/postgresql"
	case config.StoreMySQL:
		migrationsPath = "file://migrations/mysql"
		// migrate selects its driver from the URL scheme; the sql driver DSN has none.
		if !strings.HasPrefix(connectionString, "mysql://") {
			connectionString = "mysql://" + connectionString
		}
	case config.StoreMongoDB, config.StoreMemory:
		logger.Info("store driver needs no migrations", slog.String("driver", storeDriver))
		return nil
	default:
		return fmt.Errorf("unsupported store driver for migrations: %s", storeDriver)
	}

	logger.Info("running database migrations", slog.String("driver", storeDriver))

	m, err := migrate.New(migrationsPath, connectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
