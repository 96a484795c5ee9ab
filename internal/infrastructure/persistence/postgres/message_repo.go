package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/forum-hub/forum-engagement/internal/domain/notification"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// MessageRepository implements notification.MessageRepository on PostgreSQL.
//
// Letters and notices share the message table: notices have
// from_id = notification.SystemUserID and conversation_id = topic name.
// Deleted messages (status 2) stay as tombstones and are excluded from every
// count and listing here.
type MessageRepository struct {
	conn *Connection
}

// NewMessageRepository creates a MessageRepository.
func NewMessageRepository(conn *Connection) *MessageRepository {
	return &MessageRepository{conn: conn}
}

// Insert appends a message and fills in its assigned id.
func (r *MessageRepository) Insert(ctx context.Context, m *notification.Message) error {
	const q = `INSERT INTO message (from_id, to_id, conversation_id, content, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	err := r.conn.Pool().QueryRow(ctx, q,
		m.FromID, m.ToID, m.ConversationID, m.Content, int(m.Status), m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return storeErr("notification", "Insert", err)
	}
	return nil
}

// ConversationCount returns how many letter conversations the user has.
func (r *MessageRepository) ConversationCount(ctx context.Context, userID int64) (int64, error) {
	const q = `SELECT COUNT(DISTINCT conversation_id) FROM message
		WHERE status <> 2 AND from_id <> $1 AND (from_id = $2 OR to_id = $2)`

	var n int64
	if err := r.conn.Pool().QueryRow(ctx, q, notification.SystemUserID, userID).Scan(&n); err != nil {
		return 0, storeErr("notification", "ConversationCount", err)
	}
	return n, nil
}

// Conversations pages the user's conversations, newest activity first,
// returning only the latest letter of each conversation.
func (r *MessageRepository) Conversations(ctx context.Context, userID int64, offset, limit int) ([]notification.Message, error) {
	const q = `SELECT id, from_id, to_id, conversation_id, content, status, created_at
		FROM message
		WHERE id IN (
			SELECT MAX(id) FROM message
			WHERE status <> 2 AND from_id <> $1 AND (from_id = $2 OR to_id = $2)
			GROUP BY conversation_id
		)
		ORDER BY id DESC
		OFFSET $3 LIMIT $4`

	rows, err := r.conn.Pool().Query(ctx, q, notification.SystemUserID, userID, offset, limit)
	if err != nil {
		return nil, storeErr("notification", "Conversations", err)
	}
	defer rows.Close()
	return scanMessages(rows, "Conversations")
}

// LetterCount returns how many letters a conversation holds.
func (r *MessageRepository) LetterCount(ctx context.Context, conversationID string) (int64, error) {
	const q = `SELECT COUNT(*) FROM message
		WHERE status <> 2 AND from_id <> $1 AND conversation_id = $2`

	var n int64
	if err := r.conn.Pool().QueryRow(ctx, q, notification.SystemUserID, conversationID).Scan(&n); err != nil {
		return 0, storeErr("notification", "LetterCount", err)
	}
	return n, nil
}

// Letters pages a conversation's letters, newest first.
func (r *MessageRepository) Letters(ctx context.Context, conversationID string, offset, limit int) ([]notification.Message, error) {
	const q = `SELECT id, from_id, to_id, conversation_id, content, status, created_at
		FROM message
		WHERE status <> 2 AND from_id <> $1 AND conversation_id = $2
		ORDER BY id DESC
		OFFSET $3 LIMIT $4`

	rows, err := r.conn.Pool().Query(ctx, q, notification.SystemUserID, conversationID, offset, limit)
	if err != nil {
		return nil, storeErr("notification", "Letters", err)
	}
	defer rows.Close()
	return scanMessages(rows, "Letters")
}

// UnreadCount returns the user's unread letters, across all conversations
// when conversationID is empty.
func (r *MessageRepository) UnreadCount(ctx context.Context, userID int64, conversationID string) (int64, error) {
	const q = `SELECT COUNT(*) FROM message
		WHERE status = 0 AND from_id <> $1 AND to_id = $2
		AND ($3 = '' OR conversation_id = $3)`

	var n int64
	if err := r.conn.Pool().QueryRow(ctx, q, notification.SystemUserID, userID, conversationID).Scan(&n); err != nil {
		return 0, storeErr("notification", "UnreadCount", err)
	}
	return n, nil
}

// NoticeUnreadCount returns the user's unread notices, across all topics when
// topic is empty.
func (r *MessageRepository) NoticeUnreadCount(ctx context.Context, userID int64, topic string) (int64, error) {
	const q = `SELECT COUNT(*) FROM message
		WHERE status = 0 AND from_id = $1 AND to_id = $2
		AND ($3 = '' OR conversation_id = $3)`

	var n int64
	if err := r.conn.Pool().QueryRow(ctx, q, notification.SystemUserID, userID, topic).Scan(&n); err != nil {
		return 0, storeErr("notification", "NoticeUnreadCount", err)
	}
	return n, nil
}

// MarkStatus bulk-transitions the given messages and returns how many rows
// changed. The status filter makes re-marking a no-op rather than an error.
func (r *MessageRepository) MarkStatus(ctx context.Context, ids []int64, status notification.ReadState) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if !status.IsValid() {
		return 0, shared.NewDomainError("notification", "MarkStatus", shared.ErrInvalidArgument, "unknown read state")
	}

	const q = `UPDATE message SET status = $1 WHERE id = ANY($2) AND status <> $1 AND status <> 2`

	tag, err := r.conn.Pool().Exec(ctx, q, int(status), ids)
	if err != nil {
		return 0, storeErr("notification", "MarkStatus", err)
	}
	return tag.RowsAffected(), nil
}

// LatestNotice returns the newest notice for a topic, or ErrNotFound.
func (r *MessageRepository) LatestNotice(ctx context.Context, userID int64, topic string) (*notification.Message, error) {
	const q = `SELECT id, from_id, to_id, conversation_id, content, status, created_at
		FROM message
		WHERE status <> 2 AND from_id = $1 AND to_id = $2 AND conversation_id = $3
		ORDER BY id DESC
		LIMIT 1`

	var m notification.Message
	var status int
	err := r.conn.Pool().QueryRow(ctx, q, notification.SystemUserID, userID, topic).Scan(
		&m.ID, &m.FromID, &m.ToID, &m.ConversationID, &m.Content, &status, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewDomainError("notification", "LatestNotice", shared.ErrNotFound, "no notice for topic")
		}
		return nil, storeErr("notification", "LatestNotice", err)
	}
	m.Status = notification.ReadState(status)
	return &m, nil
}

// NoticeCount returns how many notices the user has for a topic.
func (r *MessageRepository) NoticeCount(ctx context.Context, userID int64, topic string) (int64, error) {
	const q = `SELECT COUNT(*) FROM message
		WHERE status <> 2 AND from_id = $1 AND to_id = $2 AND conversation_id = $3`

	var n int64
	if err := r.conn.Pool().QueryRow(ctx, q, notification.SystemUserID, userID, topic).Scan(&n); err != nil {
		return 0, storeErr("notification", "NoticeCount", err)
	}
	return n, nil
}

// Notices pages a topic's notices for the user, newest first.
func (r *MessageRepository) Notices(ctx context.Context, userID int64, topic string, offset, limit int) ([]notification.Message, error) {
	const q = `SELECT id, from_id, to_id, conversation_id, content, status, created_at
		FROM message
		WHERE status <> 2 AND from_id = $1 AND to_id = $2 AND conversation_id = $3
		ORDER BY id DESC
		OFFSET $4 LIMIT $5`

	rows, err := r.conn.Pool().Query(ctx, q, notification.SystemUserID, userID, topic, offset, limit)
	if err != nil {
		return nil, storeErr("notification", "Notices", err)
	}
	defer rows.Close()
	return scanMessages(rows, "Notices")
}

// scanMessages collects message rows.
func scanMessages(rows pgx.Rows, op string) ([]notification.Message, error) {
	var out []notification.Message
	for rows.Next() {
		var m notification.Message
		var status int
		if err := rows.Scan(&m.ID, &m.FromID, &m.ToID, &m.ConversationID, &m.Content, &status, &m.CreatedAt); err != nil {
			return nil, storeErr("notification", op, err)
		}
		m.Status = notification.ReadState(status)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("notification", op, err)
	}
	return out, nil
}
