package handler

import (
	"errors"
	"net/http"

	"simple-chats/internal/domain/chat"
	"simple-chats/internal/middleware"
	"simple-chats/internal/services"
	"simple-chats/internal/session"
	"simple-chats/internal/transport/httpdto"
	chats_errors "simple-chats/pkg/errors"
	"simple-chats/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves the web chat pages: the chat list, beginning and
// holding a conversation, and the user search.
type ChatHandler struct {
	chats    *services.ChatService
	users    *services.UserService
	sessions *session.Manager
	log      *logger.Logger
}

func NewChatHandler(chats *services.ChatService, users *services.UserService, sessions *session.Manager, log *logger.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, users: users, sessions: sessions, log: log}
}

// List shows every chat of the current user with the companion and the
// latest message.
func (h *ChatHandler) List(c *gin.Context) {
	current := middleware.CurrentUser(c)
	entries, err := h.chats.ListUserChats(c.Request.Context(), current.ID)
	if err != nil {
		h.log.Errorf("chat list failed: %s", err)
		middleware.CurrentSession(c).Flash(chats_errors.UserMessage(err))
		entries = nil
	}
	render(c, h.sessions, http.StatusOK, "chats_list.html", gin.H{"Entries": entries})
}

// Begin starts (or resumes) a chat with the named user and stores the
// companion in the session. Unknown usernames and the current user's
// own name are not distinguishable from a missing page.
func (h *ChatHandler) Begin(c *gin.Context) {
	current := middleware.CurrentUser(c)
	username := c.Param("username")
	if username == current.Username {
		notFoundPage(c, h.sessions)
		return
	}

	companion, err := h.users.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, chats_errors.ErrNotFound) {
			notFoundPage(c, h.sessions)
			return
		}
		h.log.Errorf("begin chat failed: %s", err)
		notFoundPage(c, h.sessions)
		return
	}

	// An existing chat is fine here; the pair simply continues it.
	if _, err := h.chats.CreateChat(c.Request.Context(), current.ID, companion.ID); err != nil &&
		!errors.Is(err, chats_errors.ErrAlreadyExists) {
		h.log.Errorf("create chat failed: %s", err)
		flashAndRedirect(c, h.sessions, chats_errors.UserMessage(err), "/chats/list")
		return
	}

	sess := middleware.CurrentSession(c)
	sess.CompanionID = companion.ID
	sess.RoomName = chat.RoomName(current.Username, companion.Username)
	sess.UserName = current.Name
	h.sessions.Save(c, sess)
	c.Redirect(http.StatusFound, "/chats/going")
}

// Going renders the active conversation.
func (h *ChatHandler) Going(c *gin.Context) {
	current := middleware.CurrentUser(c)
	sess := middleware.CurrentSession(c)
	if sess.CompanionID == 0 {
		c.Redirect(http.StatusFound, "/chats/list")
		return
	}

	companion, err := h.users.GetUserByID(c.Request.Context(), sess.CompanionID)
	if err != nil {
		notFoundPage(c, h.sessions)
		return
	}

	messages, err := h.chats.MessagesBetween(c.Request.Context(), current.ID, companion.ID)
	if err != nil {
		h.log.Errorf("load messages failed: %s", err)
		middleware.CurrentSession(c).Flash(chats_errors.UserMessage(err))
	}

	render(c, h.sessions, http.StatusOK, "chats_going.html", gin.H{
		"Companion": companion,
		"Messages":  messages,
		"RoomName":  sess.RoomName,
	})
}

// Send persists a message to the active companion and returns to the
// conversation.
func (h *ChatHandler) Send(c *gin.Context) {
	current := middleware.CurrentUser(c)
	sess := middleware.CurrentSession(c)
	if sess.CompanionID == 0 {
		c.Redirect(http.StatusFound, "/chats/list")
		return
	}

	if _, err := h.chats.SendMessage(c.Request.Context(), current.ID, sess.CompanionID, c.PostForm("message")); err != nil {
		if !errors.Is(err, chats_errors.ErrInvalidInput) {
			h.log.Errorf("send message failed: %s", err)
		}
		flashAndRedirect(c, h.sessions, chats_errors.UserMessage(err), "/chats/going")
		return
	}
	c.Redirect(http.StatusFound, "/chats/going")
}

// End leaves the active conversation.
func (h *ChatHandler) End(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	sess.ClearCompanion()
	h.sessions.Save(c, sess)
	c.Redirect(http.StatusFound, "/chats/list")
}

// SearchPage renders the user search page.
func (h *ChatHandler) SearchPage(c *gin.Context) {
	render(c, h.sessions, http.StatusOK, "chats_search.html", nil)
}

// AjaxSearch answers the search page's background requests. It insists
// on the AJAX marker header and returns matching users as JSON.
func (h *ChatHandler) AjaxSearch(c *gin.Context) {
	if c.GetHeader("X-Requested-With") != "XMLHttpRequest" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("ajax request expected", "BAD_REQUEST"))
		return
	}

	users, err := h.users.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.log.Errorf("user search failed: %s", err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("search failed", "INTERNAL_ERROR"))
		return
	}

	data := make([]httpdto.SearchedUserDTO, 0, len(users))
	for _, u := range users {
		data = append(data, httpdto.SearchedUserDTO{Name: u.Name, Username: u.Username})
	}
	c.JSON(http.StatusOK, httpdto.SearchEnvelope{Data: data})
}
