package handler

import (
	"errors"
	"net/http"
	"strings"

	"simple-chats/internal/middleware"
	"simple-chats/internal/services"
	"simple-chats/internal/session"
	chats_errors "simple-chats/pkg/errors"
	"simple-chats/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the web authentication flows: registration, login,
// logout and password reset. Each flow is a two-state cycle: render the
// form, then validate-and-act with either a redirect or a re-render
// carrying a flashed error.
type AuthHandler struct {
	auth     *services.AuthService
	sessions *session.Manager
	log      *logger.Logger
}

func NewAuthHandler(auth *services.AuthService, sessions *session.Manager, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, log: log}
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	render(c, h.sessions, http.StatusOK, "register.html", nil)
}

// Register validates the submitted data and creates the user.
func (h *AuthHandler) Register(c *gin.Context) {
	in := services.RegisterInput{
		Email:     c.PostForm("email"),
		Username:  c.PostForm("username"),
		Name:      c.PostForm("name"),
		Password1: c.PostForm("password1"),
		Password2: c.PostForm("password2"),
	}

	if _, err := h.auth.Register(c.Request.Context(), in); err != nil {
		if !errors.Is(err, chats_errors.ErrInvalidInput) {
			h.log.Errorf("register failed: %s", err)
		}
		middleware.CurrentSession(c).Flash(chats_errors.UserMessage(err))
		render(c, h.sessions, http.StatusOK, "register.html", nil)
		return
	}

	flashAndRedirect(c, h.sessions, "Successfully registered!", "/authentication/login")
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	render(c, h.sessions, http.StatusOK, "login.html", nil)
}

// Login checks the credentials and stores the user id in the session.
// The user is sent back to the originally requested page when one was
// preserved by the login-required guard.
func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	u, err := h.auth.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		sess := middleware.CurrentSession(c)
		switch {
		case errors.Is(err, chats_errors.ErrNotFound):
			sess.Flash("Wrong email! Maybe, you have not registered")
		case errors.Is(err, chats_errors.ErrUnauthorized):
			sess.Flash("Wrong password! Try again")
		default:
			h.log.Errorf("login failed: %s", err)
			sess.Flash(chats_errors.UserMessage(err))
		}
		render(c, h.sessions, http.StatusOK, "login.html", nil)
		return
	}

	sess := middleware.CurrentSession(c)
	sess.UserID = u.ID
	sess.Flash("Successfully logged in!")
	h.sessions.Save(c, sess)
	c.Redirect(http.StatusFound, safeNext(c.Query("next")))
}

// Logout drops the whole session.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := &session.Session{}
	sess.Flash("Successfully logged out")
	h.sessions.Save(c, sess)
	c.Redirect(http.StatusFound, "/")
}

// ForgotPasswordForm renders the forgot-password page.
func (h *AuthHandler) ForgotPasswordForm(c *gin.Context) {
	render(c, h.sessions, http.StatusOK, "forgot_password.html", nil)
}

// ForgotPassword dispatches a reset email to the given address.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	email := c.PostForm("email")

	if err := h.auth.SendResetEmail(c.Request.Context(), email); err != nil {
		sess := middleware.CurrentSession(c)
		switch {
		case errors.Is(err, chats_errors.ErrNotFound):
			sess.Flash("User with such an e-mail does not exist")
		case errors.Is(err, chats_errors.ErrInvalidInput):
			sess.Flash(chats_errors.UserMessage(err))
		default:
			h.log.Errorf("reset email failed: %s", err)
			sess.Flash(chats_errors.UserMessage(err))
		}
		render(c, h.sessions, http.StatusOK, "forgot_password.html", nil)
		return
	}

	flashAndRedirect(c, h.sessions, "Check Your e-email to reset the password!", "/authentication/login")
}

// ResetPasswordForm checks the token and renders the reset form. An
// expired token gets its own explanatory page; an invalid one is
// indistinguishable from a missing route.
func (h *AuthHandler) ResetPasswordForm(c *gin.Context) {
	token := c.Param("token")
	u, err := h.auth.UserByResetToken(c.Request.Context(), token)
	if err != nil {
		h.renderResetFailure(c, err)
		return
	}
	render(c, h.sessions, http.StatusOK, "reset_password.html", gin.H{"User": u, "Token": token})
}

// ResetPassword persists the new password for the token's user.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	token := c.Param("token")
	u, err := h.auth.UserByResetToken(c.Request.Context(), token)
	if err != nil {
		h.renderResetFailure(c, err)
		return
	}

	password1 := c.PostForm("password1")
	password2 := c.PostForm("password2")
	if err := h.auth.ResetPassword(c.Request.Context(), u.ID, password1, password2); err != nil {
		middleware.CurrentSession(c).Flash(chats_errors.UserMessage(err))
		render(c, h.sessions, http.StatusOK, "reset_password.html", gin.H{"User": u, "Token": token})
		return
	}

	flashAndRedirect(c, h.sessions, "You password was successfully reset", "/authentication/login")
}

func (h *AuthHandler) renderResetFailure(c *gin.Context, err error) {
	if errors.Is(err, chats_errors.ErrTokenExpired) {
		render(c, h.sessions, http.StatusOK, "reset_password_expired.html", nil)
		return
	}
	notFoundPage(c, h.sessions)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
