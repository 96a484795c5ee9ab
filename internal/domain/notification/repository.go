package notification

import "context"

// MessageRepository is the persistent-store port for the ledger. The store
// assigns monotonic ids; read-state transitions happen in bulk only.
// Deleted messages are excluded from every count and listing.
type MessageRepository interface {
	// Insert appends a message and fills in its assigned id.
	Insert(ctx context.Context, m *Message) error

	// ConversationCount returns how many letter conversations the user has.
	ConversationCount(ctx context.Context, userID int64) (int64, error)

	// Conversations pages the user's conversations, newest activity first,
	// returning only the latest letter of each conversation.
	Conversations(ctx context.Context, userID int64, offset, limit int) ([]Message, error)

	// LetterCount returns how many letters a conversation holds.
	LetterCount(ctx context.Context, conversationID string) (int64, error)

	// Letters pages a conversation's letters, newest first.
	Letters(ctx context.Context, conversationID string, offset, limit int) ([]Message, error)

	// UnreadCount returns the user's unread letters. An empty conversation id
	// counts across all conversations.
	UnreadCount(ctx context.Context, userID int64, conversationID string) (int64, error)

	// NoticeUnreadCount returns the user's unread notices for a topic. An
	// empty topic counts across all topics.
	NoticeUnreadCount(ctx context.Context, userID int64, topic string) (int64, error)

	// MarkStatus bulk-transitions the given messages to the state and returns
	// how many rows actually changed. Re-marking is a no-op, not an error.
	MarkStatus(ctx context.Context, ids []int64, status ReadState) (int64, error)

	// LatestNotice returns the newest notice for a topic, or ErrNotFound.
	LatestNotice(ctx context.Context, userID int64, topic string) (*Message, error)

	// NoticeCount returns how many notices the user has for a topic.
	NoticeCount(ctx context.Context, userID int64, topic string) (int64, error)

	// Notices pages a topic's notices for the user, newest first.
	Notices(ctx context.Context, userID int64, topic string, offset, limit int) ([]Message, error)
}
