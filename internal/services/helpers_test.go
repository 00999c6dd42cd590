package services

import (
	"context"
	"database/sql"
	"testing"

	"simple-chats/config"
	"simple-chats/internal/repository"

	_ "github.com/mattn/go-sqlite3"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode:             "test",
		BaseURL:             "http://localhost:8080",
		SecretKey:           "test-secret",
		DBDriver:            "sqlite3",
		ResetTokenExpiryMin: 30,
		AuthTokenExpiryMin:  60,
	}
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %s", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := repository.InitSchema(context.Background(), db, "sqlite3"); err != nil {
		t.Fatalf("failed to apply schema: %s", err)
	}
	return db
}

type recordedMail struct {
	To      string
	Subject string
	Body    string
}

// mailRecorder collects outbound mail instead of sending it.
type mailRecorder struct {
	sent []recordedMail
}

func (m *mailRecorder) Send(to, subject, body string) error {
	m.sent = append(m.sent, recordedMail{To: to, Subject: subject, Body: body})
	return nil
}

type testEnv struct {
	auth   *AuthService
	chats  *ChatService
	users  *UserService
	tokens *TokenService
	mailer *mailRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	db := newTestDB(t)

	userRepo := repository.NewUserRepository(db, cfg.DBDriver)
	chatRepo := repository.NewChatRepository(db, cfg.DBDriver)
	messageRepo := repository.NewMessageRepository(db, cfg.DBDriver)

	tokens := NewTokenService(cfg)
	mailer := &mailRecorder{}

	return &testEnv{
		auth:   NewAuthService(userRepo, tokens, mailer, cfg),
		chats:  NewChatService(chatRepo, messageRepo),
		users:  NewUserService(userRepo),
		tokens: tokens,
		mailer: mailer,
	}
}

func (e *testEnv) registerUser(t *testing.T, email, username, name string) int64 {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterInput{
		Email:     email,
		Username:  username,
		Name:      name,
		Password1: "password123",
		Password2: "password123",
	})
	if err != nil {
		t.Fatalf("failed to register %s: %s", username, err)
	}
	return u.ID
}
