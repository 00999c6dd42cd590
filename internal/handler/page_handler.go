// Package handler provides the HTTP handlers: server-rendered web pages
// and the JSON API.
package handler

import (
	"net/http"

	"simple-chats/internal/middleware"
	"simple-chats/internal/session"

	"github.com/gin-gonic/gin"
)

// render pops pending flash messages into the template data and saves
// the session before the body is written.
func render(c *gin.Context, sessions *session.Manager, status int, name string, data gin.H) {
	sess := middleware.CurrentSession(c)
	flashes := sess.PopFlashes()
	sessions.Save(c, sess)

	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = flashes
	if u := middleware.CurrentUser(c); u != nil {
		data["CurrentUser"] = u
	}
	c.HTML(status, name, data)
}

// flashAndRedirect queues a notice and sends the visitor elsewhere.
func flashAndRedirect(c *gin.Context, sessions *session.Manager, message, location string) {
	sess := middleware.CurrentSession(c)
	sess.Flash(message)
	sessions.Save(c, sess)
	c.Redirect(http.StatusFound, location)
}

func notFoundPage(c *gin.Context, sessions *session.Manager) {
	render(c, sessions, http.StatusNotFound, "404.html", nil)
}

// PageHandler serves the pages that belong to no other handler.
type PageHandler struct {
	sessions *session.Manager
}

func NewPageHandler(sessions *session.Manager) *PageHandler {
	return &PageHandler{sessions: sessions}
}

// Index renders the home page.
func (h *PageHandler) Index(c *gin.Context) {
	render(c, h.sessions, http.StatusOK, "index.html", nil)
}

// NotFound renders the 404 page for unknown routes.
func (h *PageHandler) NotFound(c *gin.Context) {
	notFoundPage(c, h.sessions)
}
