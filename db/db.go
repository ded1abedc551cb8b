// Package db wires the index oracle's GORM connection. It supports three
// backends reachable from a single DSN string: file-based SQLite, a
// libsql/Turso remote or embedded-replica URL, and Postgres — mirroring
// the teacher repository's split sqlite.go/postgres.go connectors, merged
// here behind one Connect entrypoint since the oracle picks its backend
// from the DSN scheme rather than from a build-time choice.
package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/askl/models"
)

// Connect establishes a database connection and runs migrations. The DSN
// scheme selects the backend: "postgres://" / "postgresql://" routes to
// Postgres, "http(s)://" or "libsql://" routes to a Turso/libsql connector,
// anything else is treated as a local SQLite file path.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	switch {
	case isPostgres(dsn):
		return connectPostgres(dsn, debug)
	default:
		return connectSQLite(dsn, debug)
	}
}

func gormConfig(debug bool) *gorm.Config {
	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}
	return config
}

func connectSQLite(dsn string, debug bool) (*gorm.DB, error) {
	if !isURL(dsn) {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)

		token := os.Getenv("ASKL_LIBSQL_AUTH_TOKEN")
		if token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create libsql connector: %w", err)
		}

		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		})
	} else {
		dialector = sqlite.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, gormConfig(debug))
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Exec("PRAGMA foreign_keys = ON")
	}

	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return gdb, nil
}

func connectPostgres(dsn string, debug bool) (*gorm.DB, error) {
	if err := ensureDatabase(dsn); err != nil && debug {
		fmt.Printf("[WARN] Could not ensure database exists: %v\n", err)
	}

	gdb, err := gorm.Open(postgres.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return gdb, nil
}

// ensureDatabase creates the target database if it doesn't exist yet, by
// connecting to the server's default "postgres" database first.
func ensureDatabase(dsn string) error {
	dbName := extractDBName(dsn)
	if dbName == "" {
		return fmt.Errorf("could not extract database name from DSN")
	}

	adminDSN := strings.Replace(dsn, "/"+dbName, "/postgres", 1)

	gdb, err := gorm.Open(postgres.Open(adminDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var exists bool
	gdb.Raw("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)", dbName).Scan(&exists)

	if !exists {
		if err := gdb.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)).Error; err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
	}

	return nil
}

func extractDBName(dsn string) string {
	parts := strings.Split(dsn, "/")
	if len(parts) < 4 {
		return ""
	}

	dbPart := parts[3]
	if idx := strings.Index(dbPart, "?"); idx > 0 {
		dbPart = dbPart[:idx]
	}

	return dbPart
}

// isURL reports whether dsn addresses a remote/embedded-replica libsql
// database rather than a local SQLite file path.
func isURL(dsn string) bool {
	return len(dsn) > 7 && (dsn[:7] == "http://" || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "libsql"))
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Migrate runs database migrations for the index oracle's row types.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Project{},
		&models.Module{},
		&models.File{},
		&models.Symbol{},
		&models.Declaration{},
		&models.Reference{},
	)
}
