package database

import (
	"database/sql"
	"fmt"
	"time"

	"simple-chats/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the configured database. Postgres (driver "pgx") is
// the production target; sqlite3 backs local development and tests.
func Open(cfg *config.Config) (*sql.DB, error) {
	var dsn string
	switch cfg.DBDriver {
	case "pgx":
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	case "sqlite3":
		dsn = cfg.DBPath
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}

	db, err := sql.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Connection pool settings
	if cfg.DBDriver == "pgx" {
		db.SetMaxIdleConns(10)
		db.SetMaxOpenConns(100)
		db.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

func HealthCheck(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.Ping()
}
