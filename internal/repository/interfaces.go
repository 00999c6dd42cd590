package repository

import (
	"context"

	"simple-chats/internal/domain/chat"
	"simple-chats/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	List(ctx context.Context, filters map[string]string) ([]user.User, error)
	Search(ctx context.Context, query string) ([]user.User, error)
}

type ChatRepository interface {
	// Create inserts a chat row for an already normalized pair and
	// returns the new chat id.
	Create(ctx context.Context, user1ID, user2ID int64) (int64, error)
	Exists(ctx context.Context, user1ID, user2ID int64) (bool, error)
	GetIDByUsers(ctx context.Context, user1ID, user2ID int64) (int64, error)
	Delete(ctx context.Context, chatID int64) error
	ListForUser(ctx context.Context, userID int64) ([]chat.ListEntry, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *chat.Message) error
	ListBetween(ctx context.Context, user1ID, user2ID int64) ([]chat.Message, error)
}
