package query

import (
	"context"

	"github.com/forum-hub/forum-engagement/internal/domain/notification"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET NOTICES QUERY
// Per-topic notice overview and paging.
// ══════════════════════════════════════════════════════════════════════════════

// TopicNotices summarizes one notice topic for the overview screen.
type TopicNotices struct {
	// Topic is the notice topic.
	Topic shared.Topic

	// Latest is the newest notice, nil when the topic has none.
	Latest *notification.Message

	// Count is the total notice count for the topic.
	Count int64

	// Unread is the unread notice count for the topic.
	Unread int64
}

// GetNoticesHandler executes notice queries.
type GetNoticesHandler struct {
	messages notification.MessageRepository
}

// NewGetNoticesHandler creates a GetNoticesHandler.
func NewGetNoticesHandler(messages notification.MessageRepository) *GetNoticesHandler {
	return &GetNoticesHandler{messages: messages}
}

// Overview returns one summary per notice topic, skipping none: topics
// without notices come back with a nil Latest and zero counts.
func (h *GetNoticesHandler) Overview(ctx context.Context, userID int64) ([]TopicNotices, error) {
	if userID <= 0 {
		return nil, shared.NewDomainError("notification", "GetNotices", shared.ErrInvalidID, "user id must be positive")
	}

	topics := []shared.Topic{shared.TopicLike, shared.TopicFollow, shared.TopicComment}
	out := make([]TopicNotices, 0, len(topics))
	for _, topic := range topics {
		tn := TopicNotices{Topic: topic}

		latest, err := h.messages.LatestNotice(ctx, userID, string(topic))
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		tn.Latest = latest

		if tn.Count, err = h.messages.NoticeCount(ctx, userID, string(topic)); err != nil {
			return nil, err
		}
		if tn.Unread, err = h.messages.NoticeUnreadCount(ctx, userID, string(topic)); err != nil {
			return nil, err
		}
		out = append(out, tn)
	}
	return out, nil
}

// Page lists one topic's notices for the user, newest first.
func (h *GetNoticesHandler) Page(ctx context.Context, userID int64, topic shared.Topic, offset, limit int) ([]notification.Message, error) {
	if userID <= 0 {
		return nil, shared.NewDomainError("notification", "GetNotices", shared.ErrInvalidID, "user id must be positive")
	}
	if !topic.NotifiesUser() {
		return nil, shared.NewDomainError("notification", "GetNotices", shared.ErrInvalidArgument, "not a notice topic")
	}
	if offset < 0 || limit <= 0 {
		return nil, shared.NewDomainError("notification", "GetNotices", shared.ErrInvalidArgument, "offset must be >= 0 and limit > 0")
	}
	return h.messages.Notices(ctx, userID, string(topic), offset, limit)
}

// ══════════════════════════════════════════════════════════════════════════════
// GET CONVERSATIONS QUERY
// Private letter listing: conversations and their letters.
// ══════════════════════════════════════════════════════════════════════════════

// ConversationsPage is one page of a user's conversations.
type ConversationsPage struct {
	// Latest holds the newest letter of each conversation, newest first.
	Latest []notification.Message

	// Total is the user's conversation count.
	Total int64
}

// GetConversationsHandler executes conversation queries.
type GetConversationsHandler struct {
	messages notification.MessageRepository
}

// NewGetConversationsHandler creates a GetConversationsHandler.
func NewGetConversationsHandler(messages notification.MessageRepository) *GetConversationsHandler {
	return &GetConversationsHandler{messages: messages}
}

// Conversations pages the user's conversations.
func (h *GetConversationsHandler) Conversations(ctx context.Context, userID int64, offset, limit int) (*ConversationsPage, error) {
	if userID <= 0 {
		return nil, shared.NewDomainError("notification", "GetConversations", shared.ErrInvalidID, "user id must be positive")
	}
	if offset < 0 || limit <= 0 {
		return nil, shared.NewDomainError("notification", "GetConversations", shared.ErrInvalidArgument, "offset must be >= 0 and limit > 0")
	}

	latest, err := h.messages.Conversations(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := h.messages.ConversationCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ConversationsPage{Latest: latest, Total: total}, nil
}

// Letters pages one conversation's letters, newest first.
func (h *GetConversationsHandler) Letters(ctx context.Context, conversationID string, offset, limit int) ([]notification.Message, error) {
	if conversationID == "" {
		return nil, shared.NewDomainError("notification", "GetConversations", shared.ErrEmptyValue, "conversation id is required")
	}
	if offset < 0 || limit <= 0 {
		return nil, shared.NewDomainError("notification", "GetConversations", shared.ErrInvalidArgument, "offset must be >= 0 and limit > 0")
	}
	return h.messages.Letters(ctx, conversationID, offset, limit)
}
