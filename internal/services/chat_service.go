package services

import (
	"context"

	"simple-chats/internal/cache"
	"simple-chats/internal/domain/chat"
	"simple-chats/internal/repository"
	chats_errors "simple-chats/pkg/errors"
)

// pairCacheSize bounds both memoization caches.
const pairCacheSize = 256

// ChatService manages the unordered user-pair to chat relation. The two
// caches memoize existence and id lookups per normalized pair; every
// mutation purges them so the next read recomputes from the store.
// Failed id lookups are never memoized.
type ChatService struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	existsCache *cache.PairCache[bool]
	idCache     *cache.PairCache[int64]
}

func NewChatService(chatRepo repository.ChatRepository, messageRepo repository.MessageRepository) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		existsCache: cache.NewPairCache[bool](pairCacheSize),
		idCache:     cache.NewPairCache[int64](pairCacheSize),
	}
}

// CreateChat links two users. The pair may come in any order. A chat
// that already exists is a strict reject, not a no-op; the caller
// decides whether that matters.
func (s *ChatService) CreateChat(ctx context.Context, user1ID, user2ID int64) (int64, error) {
	a, b := chat.NormalizePair(user1ID, user2ID)
	exists, err := s.IsChatBetween(ctx, a, b)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, chats_errors.ErrAlreadyExists
	}
	id, err := s.chatRepo.Create(ctx, a, b)
	if err != nil {
		return 0, err
	}
	s.existsCache.Purge()
	return id, nil
}

// DeleteChatByUsers removes the chat between the two users, resolving
// the chat id from the pair first.
func (s *ChatService) DeleteChatByUsers(ctx context.Context, user1ID, user2ID int64) error {
	chatID, err := s.GetChatIDByUsers(ctx, user1ID, user2ID)
	if err != nil {
		return err
	}
	return s.DeleteChatByID(ctx, chatID)
}

func (s *ChatService) DeleteChatByID(ctx context.Context, chatID int64) error {
	if err := s.chatRepo.Delete(ctx, chatID); err != nil {
		return err
	}
	s.existsCache.Purge()
	s.idCache.Purge()
	return nil
}

func (s *ChatService) IsChatBetween(ctx context.Context, user1ID, user2ID int64) (bool, error) {
	key := cache.NewPairKey(user1ID, user2ID)
	if exists, ok := s.existsCache.Get(key); ok {
		return exists, nil
	}
	exists, err := s.chatRepo.Exists(ctx, key.A, key.B)
	if err != nil {
		return false, err
	}
	s.existsCache.Set(key, exists)
	return exists, nil
}

func (s *ChatService) GetChatIDByUsers(ctx context.Context, user1ID, user2ID int64) (int64, error) {
	key := cache.NewPairKey(user1ID, user2ID)
	if id, ok := s.idCache.Get(key); ok {
		return id, nil
	}
	id, err := s.chatRepo.GetIDByUsers(ctx, key.A, key.B)
	if err != nil {
		return 0, err
	}
	s.idCache.Set(key, id)
	return id, nil
}

func (s *ChatService) ListUserChats(ctx context.Context, userID int64) ([]chat.ListEntry, error) {
	return s.chatRepo.ListForUser(ctx, userID)
}

func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID int64, text string) (chat.Message, error) {
	if text == "" {
		return chat.Message{}, chats_errors.NewValidationError("Message cannot be empty")
	}
	m := chat.Message{
		Text:       text,
		SenderID:   senderID,
		ReceiverID: receiverID,
	}
	if err := s.messageRepo.Create(ctx, &m); err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

func (s *ChatService) MessagesBetween(ctx context.Context, user1ID, user2ID int64) ([]chat.Message, error) {
	return s.messageRepo.ListBetween(ctx, user1ID, user2ID)
}
