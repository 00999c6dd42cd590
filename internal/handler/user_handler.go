package handler

import (
	"errors"
	"net/http"
	"strconv"

	"simple-chats/internal/middleware"
	"simple-chats/internal/services"
	"simple-chats/internal/transport/httpdto"
	chats_errors "simple-chats/pkg/errors"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the read-only REST user resource.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers returns all users, optionally narrowed by equality filters
// taken from the query string.
func (h *UserHandler) ListUsers(c *gin.Context) {
	current := middleware.CurrentUser(c)

	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	users, err := h.users.ListUsers(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("failed to list users", "INTERNAL_ERROR"))
		return
	}

	data := make([]httpdto.UserDTO, 0, len(users))
	for _, u := range users {
		data = append(data, httpdto.NewUserDTO(u))
	}
	c.JSON(http.StatusOK, httpdto.UsersListEnvelope{UserID: current.ID, Data: data})
}

// GetUser returns one user by id, or 404.
func (h *UserHandler) GetUser(c *gin.Context) {
	current := middleware.CurrentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("user not found", "NOT_FOUND"))
		return
	}

	u, err := h.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, chats_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("user not found", "NOT_FOUND"))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("failed to load user", "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusOK, httpdto.UserSingleEnvelope{UserID: current.ID, Data: httpdto.NewUserDTO(u)})
}
