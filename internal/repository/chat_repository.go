package repository

import (
	"context"
	"database/sql"
	"errors"

	"simple-chats/internal/domain/chat"
	chats_errors "simple-chats/pkg/errors"
)

type SQLChatRepository struct {
	db     DBTX
	driver string
}

func NewChatRepository(db DBTX, driver string) ChatRepository {
	return &SQLChatRepository{db: db, driver: driver}
}

func (r *SQLChatRepository) Create(ctx context.Context, user1ID, user2ID int64) (int64, error) {
	var id int64
	query := rebind(r.driver, "INSERT INTO chats (user1_id, user2_id) VALUES (?, ?) RETURNING chat_id")
	err := r.db.QueryRowContext(ctx, query, user1ID, user2ID).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, chats_errors.ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (r *SQLChatRepository) Exists(ctx context.Context, user1ID, user2ID int64) (bool, error) {
	var exists bool
	query := rebind(r.driver,
		"SELECT EXISTS(SELECT 1 FROM chats WHERE user1_id = ? AND user2_id = ?)")
	if err := r.db.QueryRowContext(ctx, query, user1ID, user2ID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *SQLChatRepository) GetIDByUsers(ctx context.Context, user1ID, user2ID int64) (int64, error) {
	var id int64
	query := rebind(r.driver, "SELECT chat_id FROM chats WHERE user1_id = ? AND user2_id = ?")
	err := r.db.QueryRowContext(ctx, query, user1ID, user2ID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, chats_errors.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *SQLChatRepository) Delete(ctx context.Context, chatID int64) error {
	query := rebind(r.driver, "DELETE FROM chats WHERE chat_id = ?")
	res, err := r.db.ExecContext(ctx, query, chatID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return chats_errors.ErrNotFound
	}
	return nil
}

// ListForUser returns every chat the user participates in, joined with
// the companion's profile and the latest message of the pair.
func (r *SQLChatRepository) ListForUser(ctx context.Context, userID int64) ([]chat.ListEntry, error) {
	query := rebind(r.driver, `
		SELECT c.chat_id, u.user_id, u.name, u.username,
		       COALESCE((
		           SELECT m.text FROM messages m
		           WHERE (m.sender_id = c.user1_id AND m.receiver_id = c.user2_id)
		              OR (m.sender_id = c.user2_id AND m.receiver_id = c.user1_id)
		           ORDER BY m.created_at DESC, m.message_id DESC
		           LIMIT 1
		       ), '')
		FROM chats c
		JOIN users u ON u.user_id = CASE WHEN c.user1_id = ? THEN c.user2_id ELSE c.user1_id END
		WHERE c.user1_id = ? OR c.user2_id = ?
		ORDER BY c.chat_id`)

	rows, err := r.db.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []chat.ListEntry
	for rows.Next() {
		var e chat.ListEntry
		if err := rows.Scan(&e.ChatID, &e.CompanionID, &e.CompanionName, &e.CompanionUsername, &e.LastMessage); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
