package repository

import (
	"context"
	"time"

	"simple-chats/internal/domain/chat"
)

type SQLMessageRepository struct {
	db     DBTX
	driver string
}

func NewMessageRepository(db DBTX, driver string) MessageRepository {
	return &SQLMessageRepository{db: db, driver: driver}
}

func (r *SQLMessageRepository) Create(ctx context.Context, m *chat.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := rebind(r.driver,
		"INSERT INTO messages (text, sender_id, receiver_id, created_at) VALUES (?, ?, ?, ?) RETURNING message_id")
	return r.db.QueryRowContext(ctx, query, m.Text, m.SenderID, m.ReceiverID, m.CreatedAt).Scan(&m.ID)
}

// ListBetween returns the full conversation between two users in both
// directions, ordered by creation time.
func (r *SQLMessageRepository) ListBetween(ctx context.Context, user1ID, user2ID int64) ([]chat.Message, error) {
	query := rebind(r.driver, `
		SELECT message_id, text, sender_id, receiver_id, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at, message_id`)

	rows, err := r.db.QueryContext(ctx, query, user1ID, user2ID, user2ID, user1ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.Text, &m.SenderID, &m.ReceiverID, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
