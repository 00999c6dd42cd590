package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"simple-chats/config"
	"simple-chats/internal/repository"
	"simple-chats/internal/services"
	"simple-chats/internal/session"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type guardEnv struct {
	sessions *session.Manager
	tokens   *services.TokenService
	auth     *services.AuthService
	userID   int64
}

func newGuardEnv(t *testing.T) *guardEnv {
	t.Helper()
	cfg := &config.Config{
		SecretKey:           "test-secret",
		BaseURL:             "http://localhost:8080",
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
	tokens := services.NewTokenService(cfg)
	auth := services.NewAuthService(userRepo, tokens, nopMailer{}, cfg)

	u, err := auth.Register(context.Background(), services.RegisterInput{
		Email:     "ann@example.com",
		Username:  "ann",
		Name:      "Ann Lee",
		Password1: "password123",
		Password2: "password123",
	})
	if err != nil {
		t.Fatalf("failed to register user: %s", err)
	}

	return &guardEnv{
		sessions: session.NewManager(cfg.SecretKey),
		tokens:   tokens,
		auth:     auth,
		userID:   u.ID,
	}
}

type nopMailer struct{}

func (nopMailer) Send(to, subject, body string) error { return nil }

// loginCookie builds a signed cookie for the registered user.
func (e *guardEnv) loginCookie(t *testing.T) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	e.sessions.Save(c, &session.Session{UserID: e.userID})
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	t.Fatal("expected a session cookie")
	return nil
}

func (e *guardEnv) newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(SessionMiddleware(e.sessions, e.auth))

	engine.GET("/flashes", func(c *gin.Context) {
		sess := CurrentSession(c)
		flashes := sess.PopFlashes()
		e.sessions.Save(c, sess)
		c.String(http.StatusOK, strings.Join(flashes, "|"))
	})
	engine.GET("/authentication/login", AnonymousRequired(e.sessions), func(c *gin.Context) {
		c.String(http.StatusOK, "login form")
	})
	engine.GET("/chats/search", LoginRequired(e.sessions), func(c *gin.Context) {
		c.String(http.StatusOK, "search page")
	})
	engine.GET("/api/whoami", TokenAuth(e.tokens, e.auth), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	return engine
}

func TestLoginRequiredRedirectsAnonymous(t *testing.T) {
	env := newGuardEnv(t)
	engine := env.newEngine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chats/search", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	location := w.Header().Get("Location")
	if location != "/authentication/login?next=%2Fchats%2Fsearch" {
		t.Fatalf("unexpected redirect target %q", location)
	}

	// The guard flashed a notice into the saved session.
	var sessionCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.CookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected the guard to save the session")
	}

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/flashes", nil)
	req.AddCookie(sessionCookie)
	engine.ServeHTTP(w2, req)
	if w2.Body.String() != LoginRequiredMessage {
		t.Fatalf("expected flash %q, got %q", LoginRequiredMessage, w2.Body.String())
	}
}

func TestLoginRequiredPassesAuthenticated(t *testing.T) {
	env := newGuardEnv(t)
	engine := env.newEngine()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chats/search", nil)
	req.AddCookie(env.loginCookie(t))
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "search page" {
		t.Fatalf("expected the page, got %d %q", w.Code, w.Body.String())
	}
}

func TestLoginRequiredIgnoresStaleUserID(t *testing.T) {
	env := newGuardEnv(t)
	engine := env.newEngine()

	// A signed cookie whose user no longer exists in the store.
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	env.sessions.Save(c, &session.Session{UserID: env.userID + 1000})
	var stale *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.CookieName {
			stale = cookie
		}
	}

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chats/search", nil)
	req.AddCookie(stale)
	engine.ServeHTTP(w2, req)
	if w2.Code != http.StatusFound {
		t.Fatalf("expected a redirect for a stale session, got %d", w2.Code)
	}
}

func TestAnonymousRequired(t *testing.T) {
	env := newGuardEnv(t)
	engine := env.newEngine()

	// Anonymous visitors pass through.
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/authentication/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous, got %d", w.Code)
	}

	// Logged-in visitors are bounced home.
	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/authentication/login", nil)
	req.AddCookie(env.loginCookie(t))
	engine.ServeHTTP(w2, req)
	if w2.Code != http.StatusFound || w2.Header().Get("Location") != "/" {
		t.Fatalf("expected 302 to /, got %d %q", w2.Code, w2.Header().Get("Location"))
	}
}

func TestTokenAuthBearer(t *testing.T) {
	env := newGuardEnv(t)
	engine := env.newEngine()

	token, err := env.tokens.IssueAuthToken(env.userID)
	if err != nil {
		t.Fatalf("failed to issue token: %s", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ann" {
		t.Fatalf("expected ann, got %d %q", w.Code, w.Body.String())
	}
}

func TestTokenAuthRejects(t *testing.T) {
	env := newGuardEnv(t)
	engine := env.newEngine()

	expired, err := env.tokens.IssueAuthToken(env.userID, -time.Minute)
	if err != nil {
		t.Fatalf("failed to issue token: %s", err)
	}

	cases := []struct {
		name  string
		setup func(req *http.Request)
	}{
		{"no credentials", func(req *http.Request) {}},
		{"expired token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+expired) }},
		{"garbage token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nonsense") }},
		{"wrong password", func(req *http.Request) { req.SetBasicAuth("ann@example.com", "wrong") }},
		{"unknown email", func(req *http.Request) { req.SetBasicAuth("nobody@example.com", "password123") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
			tc.setup(req)
			engine.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			if w.Header().Get("WWW-Authenticate") == "" {
				t.Fatal("expected a WWW-Authenticate challenge")
			}
		})
	}
}

func TestTokenAuthBasic(t *testing.T) {
	env := newGuardEnv(t)
	engine := env.newEngine()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.SetBasicAuth("ann@example.com", "password123")
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ann" {
		t.Fatalf("expected ann, got %d %q", w.Code, w.Body.String())
	}
}
