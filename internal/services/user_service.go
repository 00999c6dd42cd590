package services

import (
	"context"

	"simple-chats/internal/domain/user"
	"simple-chats/internal/repository"
)

// UserService backs the read-only REST user resource and the chat
// search page.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, filters map[string]string) ([]user.User, error) {
	return s.userRepo.List(ctx, filters)
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) SearchUsers(ctx context.Context, query string) ([]user.User, error) {
	return s.userRepo.Search(ctx, query)
}
