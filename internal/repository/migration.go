package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// InitSchema creates the tables if they do not exist yet. The statements
// are written for sqlite3 and adjusted for postgres syntax when needed.
func InitSchema(ctx context.Context, db *sql.DB, driver string) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		username VARCHAR(20) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(25),
		password_hash VARCHAR(255) NOT NULL,
		date_joined DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chats (
		chat_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user1_id INTEGER NOT NULL REFERENCES users(user_id),
		user2_id INTEGER NOT NULL REFERENCES users(user_id),
		UNIQUE (user1_id, user2_id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		message_id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		sender_id INTEGER NOT NULL REFERENCES users(user_id),
		receiver_id INTEGER NOT NULL REFERENCES users(user_id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	if driver == "pgx" {
		schema = strings.ReplaceAll(schema, "INTEGER PRIMARY KEY AUTOINCREMENT", "BIGSERIAL PRIMARY KEY")
		schema = strings.ReplaceAll(schema, "DATETIME", "TIMESTAMP")
	}

	err := WithTx(ctx, db, func(tx DBTX) error {
		for _, stmt := range strings.Split(schema, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
