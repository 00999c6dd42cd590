package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"simple-chats/internal/domain/user"

	_ "github.com/mattn/go-sqlite3"
)

const testDriver = "sqlite3"

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(testDriver, ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %s", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := InitSchema(context.Background(), db, testDriver); err != nil {
		t.Fatalf("failed to apply schema: %s", err)
	}
	return db
}

func createTestUser(t *testing.T, repo UserRepository, username string) user.User {
	t.Helper()
	u := user.User{
		Username:     username,
		Email:        username + "@example.com",
		Name:         "User " + username,
		PasswordHash: "hash-" + username,
		DateJoined:   time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(context.Background(), &u); err != nil {
		t.Fatalf("failed to create user %s: %s", username, err)
	}
	return u
}
