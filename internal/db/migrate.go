package db

import (
	migrate "github.com/golang-migrate/migrate/v4"
	"gorm.io/gorm"

	"github.com/efactura/efactura/internal/models"

	// Register the migrate database drivers and the file source.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// AutoMigrate creates or updates the schema from the model definitions.
// The SQL migrations under ./migrations are the production path; this covers
// development and tests.
func AutoMigrate(dbc *gorm.DB) error {
	return dbc.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Product{},
		&models.Invoice{},
		&models.LineItem{},
	)
}

// runSQLMigrations executes migrations in ./migrations using the file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", migrateURL(dsn))
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
