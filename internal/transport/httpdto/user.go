package httpdto

import (
	"time"

	"simple-chats/internal/domain/user"
)

// UserDTO is the public user representation. Email and the password
// hash are deliberately absent from list and detail payloads.
type UserDTO struct {
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	DateJoined time.Time `json:"date_joined"`
}

func NewUserDTO(u user.User) UserDTO {
	return UserDTO{
		UserID:     u.ID,
		Username:   u.Username,
		Name:       u.Name,
		DateJoined: u.DateJoined,
	}
}

// UsersListEnvelope wraps the user list with the requesting user's id.
type UsersListEnvelope struct {
	UserID int64     `json:"user_id"`
	Data   []UserDTO `json:"data"`
}

// UserSingleEnvelope wraps a single user the same way.
type UserSingleEnvelope struct {
	UserID int64   `json:"user_id"`
	Data   UserDTO `json:"data"`
}

// SearchedUserDTO is one row of the ajax user search response.
type SearchedUserDTO struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type SearchEnvelope struct {
	Data []SearchedUserDTO `json:"data"`
}
