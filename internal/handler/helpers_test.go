package handler_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"simple-chats/config"
	"simple-chats/internal/handler"
	"simple-chats/internal/repository"
	"simple-chats/internal/server"
	"simple-chats/internal/services"
	"simple-chats/internal/session"
	"simple-chats/pkg/logger"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type recordedMail struct {
	To      string
	Subject string
	Body    string
}

type mailRecorder struct {
	sent []recordedMail
}

func (m *mailRecorder) Send(to, subject, body string) error {
	m.sent = append(m.sent, recordedMail{To: to, Subject: subject, Body: body})
	return nil
}

type webEnv struct {
	engine *gin.Engine
	auth   *services.AuthService
	chats  *services.ChatService
	tokens *services.TokenService
	mailer *mailRecorder
}

func newWebEnv(t *testing.T) *webEnv {
	t.Helper()
	cfg := &config.Config{
		AppPort:             "8080",
		AppMode:             "test",
		BaseURL:             "http://localhost:8080",
		SecretKey:           "test-secret",
		DBDriver:            "sqlite3",
		ResetTokenExpiryMin: 30,
		AuthTokenExpiryMin:  60,
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %s", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := repository.InitSchema(context.Background(), db, cfg.DBDriver); err != nil {
		t.Fatalf("failed to apply schema: %s", err)
	}

	userRepo := repository.NewUserRepository(db, cfg.DBDriver)
	chatRepo := repository.NewChatRepository(db, cfg.DBDriver)
	messageRepo := repository.NewMessageRepository(db, cfg.DBDriver)

	tokens := services.NewTokenService(cfg)
	mailer := &mailRecorder{}
	authService := services.NewAuthService(userRepo, tokens, mailer, cfg)
	chatService := services.NewChatService(chatRepo, messageRepo)
	userService := services.NewUserService(userRepo)

	sessions := session.NewManager(cfg.SecretKey)
	log := &logger.Logger{Logger: zap.NewNop()}

	srv := server.New(cfg, log)
	srv.SetupRoutes(&server.Handlers{
		Pages: handler.NewPageHandler(sessions),
		Auth:  handler.NewAuthHandler(authService, sessions, log),
		Chats: handler.NewChatHandler(chatService, userService, sessions, log),
		Users: handler.NewUserHandler(userService),
	}, sessions, tokens, authService, db, "../../templates/*.html")

	return &webEnv{
		engine: srv.Engine(),
		auth:   authService,
		chats:  chatService,
		tokens: tokens,
		mailer: mailer,
	}
}

func (e *webEnv) registerUser(t *testing.T, email, username, name, password string) int64 {
	t.Helper()
	u, err := e.auth.Register(context.Background(), services.RegisterInput{
		Email:     email,
		Username:  username,
		Name:      name,
		Password1: password,
		Password2: password,
	})
	if err != nil {
		t.Fatalf("failed to register %s: %s", username, err)
	}
	return u.ID
}

// webClient drives the engine like a browser: it carries cookies across
// requests but never follows redirects on its own.
type webClient struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, env *webEnv) *webClient {
	return &webClient{t: t, engine: env.engine, cookies: map[string]*http.Cookie{}}
}

func (c *webClient) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	for _, cookie := range w.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}
	return w
}

func (c *webClient) get(target string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *webClient) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *webClient) login(email, password string) {
	c.t.Helper()
	w := c.postForm("/authentication/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	if w.Code != http.StatusFound {
		c.t.Fatalf("expected login to redirect, got %d:\n%s", w.Code, w.Body.String())
	}
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d:\n%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func expectBodyContains(t *testing.T, w *httptest.ResponseRecorder, fragment string) {
	t.Helper()
	if !strings.Contains(w.Body.String(), fragment) {
		t.Fatalf("expected body to contain %q:\n%s", fragment, w.Body.String())
	}
}
