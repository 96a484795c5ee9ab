// Package eventhandler contains the worker-side handlers that turn consumed
// domain events into ledger writes and index updates.
package eventhandler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/forum-hub/forum-engagement/internal/domain/notification"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTICE MATERIALIZER
// ══════════════════════════════════════════════════════════════════════════════

// NoticeMaterializer converts like, follow and comment events into stored
// system notices.
//
// Each notice is a message from the system sender to the content author,
// grouped under the topic's conversation. The payload carries who acted on
// what, serialized as JSON, so the presentation layer can render "user X
// liked your post" without a second lookup. Events where the actor is also
// the author produce no notice; people are not told about their own actions.
type NoticeMaterializer struct {
	messages notification.MessageRepository
	logger   *slog.Logger
}

// NewNoticeMaterializer creates a NoticeMaterializer.
func NewNoticeMaterializer(messages notification.MessageRepository, logger *slog.Logger) *NoticeMaterializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoticeMaterializer{messages: messages, logger: logger}
}

// noticePayload is the serialized notice content.
type noticePayload struct {
	ActorID    int64             `json:"actor_id"`
	EntityKind int               `json:"entity_kind"`
	EntityID   int64             `json:"entity_id"`
	Data       map[string]string `json:"data,omitempty"`
}

// Materialize stores one notice for the event, or nothing when the event
// does not warrant one.
func (h *NoticeMaterializer) Materialize(ctx context.Context, ev shared.Event) error {
	if !ev.Topic.NotifiesUser() {
		return nil
	}
	if ev.AuthorID <= 0 || ev.AuthorID == ev.ActorID {
		return nil
	}

	payload, err := json.Marshal(noticePayload{
		ActorID:    ev.ActorID,
		EntityKind: int(ev.EntityKind),
		EntityID:   ev.EntityID,
		Data:       ev.Data,
	})
	if err != nil {
		return err
	}

	msg := &notification.Message{
		FromID:         notification.SystemUserID,
		ToID:           ev.AuthorID,
		ConversationID: notification.NoticeConversationID(ev.Topic),
		Content:        string(payload),
		Status:         notification.StateUnread,
		CreatedAt:      ev.CreatedAt,
	}
	if err := h.messages.Insert(ctx, msg); err != nil {
		return err
	}

	h.logger.Debug("notice materialized",
		"topic", ev.Topic,
		"recipient", ev.AuthorID,
		"actor", ev.ActorID,
		"notice_id", msg.ID,
	)
	return nil
}
