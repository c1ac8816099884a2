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

	"github.com/allisson/blueprint-secrets/internal/database"
)

// RunMigrations applies every pending migration of the SQL store driver.
// A database already at the latest version is not an error.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	if driver != "postgres" && driver != "mysql" {
		return fmt.Errorf("store driver %q has no migrations (use postgres or mysql)", driver)
	}

	logger.Info("running database migrations", slog.String("driver", driver))

	m, err := migrate.New(database.MigrationsPath(driver), migrationDatabaseURL(driver, connectionString))
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

// migrationDatabaseURL turns a go-sql-driver/mysql DSN into the URL form golang-migrate
// selects its driver by. Postgres connection strings are already URLs.
func migrationDatabaseURL(driver, connectionString string) string {
	if driver == "mysql" && !strings.HasPrefix(connectionString, "mysql://") {
		return "mysql://" + connectionString
	}
	return connectionString
}
