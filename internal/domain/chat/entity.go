package chat

import (
	"sort"
	"strings"
	"time"
)

// Chat represents the chats table. Rows are always stored with
// User1ID < User2ID so (a,b) and (b,a) map to the same row.
type Chat struct {
	ID      int64
	User1ID int64
	User2ID int64
}

// Message represents the messages table. Messages are immutable once
// created and ordered by CreatedAt within a chat pair.
type Message struct {
	ID         int64
	Text       string
	SenderID   int64
	ReceiverID int64
	CreatedAt  time.Time
}

// ListEntry is one row of a user's chat list: the companion plus the
// latest message exchanged with them.
type ListEntry struct {
	ChatID            int64
	CompanionID       int64
	CompanionName     string
	CompanionUsername string
	LastMessage       string
}

// NormalizePair reorders two user ids ascending. The normalized pair is
// the canonical row and cache key for a chat.
func NormalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// RoomName builds the unique room identifier for two usernames,
// independent of argument order.
func RoomName(username1, username2 string) string {
	names := []string{username1, username2}
	sort.Strings(names)
	return strings.Join(names, "_")
}
