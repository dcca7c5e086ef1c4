package db

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	once    sync.Once
	conn    *gorm.DB
	connErr error
)

// Connect returns the process-wide database handle, opening and migrating it
// on first use. The handle is shared for the process lifetime and never
// explicitly closed in steady state.
func Connect(dsn string) (*gorm.DB, error) {
	once.Do(func() {
		conn, connErr = open(dsn)
	})
	return conn, connErr
}

// Open opens a fresh connection without touching the shared handle. Tests use
// it to get isolated databases.
func Open(dsn string) (*gorm.DB, error) { return open(dsn) }

func open(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(strings.Trim(dsn, "\"'"))
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var dbc *gorm.DB
	var err error
	if isPostgres(dsn) {
		for i := 0; i < 10; i++ {
			dbc, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			time.Sleep(2 * time.Second)
		}
	} else {
		dbc, err = gorm.Open(sqlite.Open(sqliteDSN(dsn)), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if pingErr := dbc.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	// MIGRATIONS=1 runs sql migrations via golang-migrate; otherwise the
	// AutoMigrate fallback keeps the dev loop short.
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := AutoMigrate(dbc); err != nil {
		return nil, err
	}
	return dbc, nil
}

func isPostgres(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") || strings.Contains(lower, "host=")
}

// sqliteDSN makes sure foreign key enforcement is on; the line-item cascade
// and set-null rules depend on it.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_fk=") || strings.Contains(dsn, "_foreign_keys=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_fk=1"
	}
	return dsn + "?_fk=1"
}

// migrateURL converts the configured DSN into a golang-migrate database URL.
func migrateURL(dsn string) string {
	if isPostgres(dsn) {
		return dsn
	}
	path := strings.TrimPrefix(sqliteDSN(dsn), "file:")
	return "sqlite3://" + path
}

// MaskDSN hides credentials for diagnostics output.
func MaskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "***")
			return u.String()
		}
	}
	return dsn
}
