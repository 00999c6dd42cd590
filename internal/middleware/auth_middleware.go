package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"simple-chats/internal/domain/user"
	"simple-chats/internal/services"
	"simple-chats/internal/session"
	"simple-chats/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey     = "session"
	currentUserKey = "current_user"
)

// Fixed notices flashed by the route guards.
const (
	LoginRequiredMessage     = "You have to log in first"
	AnonymousRequiredMessage = "You have been already logged in"
)

// SessionMiddleware loads the signed session cookie once per request and
// resolves the current user from it. Absence of a valid identity leaves
// a nil user in the context; it is a state, not an error.
func SessionMiddleware(manager *session.Manager, auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := manager.Load(c)
		c.Set(sessionKey, sess)

		if sess.LoggedIn() {
			if u, err := auth.GetUserByID(c.Request.Context(), sess.UserID); err == nil {
				c.Set(currentUserKey, &u)
			}
		}
		c.Next()
	}
}

// CurrentSession returns the request's session. SessionMiddleware must
// have run.
func CurrentSession(c *gin.Context) *session.Session {
	if value, ok := c.Get(sessionKey); ok {
		if sess, ok := value.(*session.Session); ok {
			return sess
		}
	}
	return &session.Session{}
}

// CurrentUser returns the authenticated user, or nil for anonymous
// requests.
func CurrentUser(c *gin.Context) *user.User {
	if value, ok := c.Get(currentUserKey); ok {
		if u, ok := value.(*user.User); ok {
			return u
		}
	}
	return nil
}

// LoginRequired guards routes that need an authenticated user. The
// originally requested URL is preserved for the post-login redirect.
func LoginRequired(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		sess := CurrentSession(c)
		sess.Flash(LoginRequiredMessage)
		manager.Save(c, sess)
		next := url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, "/authentication/login?next="+next)
		c.Abort()
	}
}

// AnonymousRequired guards login/register-type routes against already
// authenticated users.
func AnonymousRequired(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Next()
			return
		}
		sess := CurrentSession(c)
		sess.Flash(AnonymousRequiredMessage)
		manager.Save(c, sess)
		c.Redirect(http.StatusFound, "/")
		c.Abort()
	}
}

// TokenAuth authorizes API requests with either a bearer auth token or
// basic email:password credentials.
func TokenAuth(tokens *services.TokenService, auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := resolveAPIUser(c, tokens, auth); ok {
			c.Set(currentUserKey, u)
			c.Next()
			return
		}
		c.Header("WWW-Authenticate", `Basic realm="simple-chats"`)
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		c.Abort()
	}
}

func resolveAPIUser(c *gin.Context, tokens *services.TokenService, auth *services.AuthService) (*user.User, bool) {
	if token := extractBearer(c); token != "" {
		userID, err := tokens.Verify(token)
		if err != nil {
			return nil, false
		}
		u, err := auth.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			return nil, false
		}
		return &u, true
	}

	if email, password, ok := c.Request.BasicAuth(); ok {
		u, err := auth.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			return nil, false
		}
		return &u, true
	}

	return nil, false
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
