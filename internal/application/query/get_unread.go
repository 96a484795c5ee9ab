package query

import (
	"context"

	"github.com/forum-hub/forum-engagement/internal/domain/notification"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET UNREAD QUERY
// The badge numbers: unread letters plus unread notices per topic.
// ══════════════════════════════════════════════════════════════════════════════

// UnreadSummary aggregates a user's unread state.
type UnreadSummary struct {
	// Letters is the unread private letter count across all conversations.
	Letters int64

	// Notices is the unread notice count per topic.
	Notices map[shared.Topic]int64

	// Total is letters plus all notices.
	Total int64
}

// GetUnreadHandler executes the unread aggregation.
type GetUnreadHandler struct {
	messages notification.MessageRepository
}

// NewGetUnreadHandler creates a GetUnreadHandler.
func NewGetUnreadHandler(messages notification.MessageRepository) *GetUnreadHandler {
	return &GetUnreadHandler{messages: messages}
}

// Handle returns the user's unread summary.
func (h *GetUnreadHandler) Handle(ctx context.Context, userID int64) (*UnreadSummary, error) {
	if userID <= 0 {
		return nil, shared.NewDomainError("notification", "GetUnread", shared.ErrInvalidID, "user id must be positive")
	}

	letters, err := h.messages.UnreadCount(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	sum := &UnreadSummary{
		Letters: letters,
		Notices: make(map[shared.Topic]int64, 3),
		Total:   letters,
	}
	for _, topic := range []shared.Topic{shared.TopicLike, shared.TopicFollow, shared.TopicComment} {
		n, err := h.messages.NoticeUnreadCount(ctx, userID, string(topic))
		if err != nil {
			return nil, err
		}
		sum.Notices[topic] = n
		sum.Total += n
	}
	return sum, nil
}

// ConversationUnread returns the unread letter count for one conversation.
func (h *GetUnreadHandler) ConversationUnread(ctx context.Context, userID int64, conversationID string) (int64, error) {
	if userID <= 0 {
		return 0, shared.NewDomainError("notification", "GetUnread", shared.ErrInvalidID, "user id must be positive")
	}
	return h.messages.UnreadCount(ctx, userID, conversationID)
}
