package command

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/forum-hub/forum-engagement/internal/domain/notification"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEND MESSAGE COMMAND
// Appends a private letter to the conversation between two users.
// ══════════════════════════════════════════════════════════════════════════════

// SendMessageCommand contains the data to send a letter.
type SendMessageCommand struct {
	// FromID is the sender.
	FromID int64

	// ToID is the recipient.
	ToID int64

	// Content is the letter body.
	Content string
}

// Validate validates the command.
func (c SendMessageCommand) Validate() error {
	if c.FromID <= 0 || c.ToID <= 0 {
		return shared.NewDomainError("notification", "SendMessage", shared.ErrInvalidID, "ids must be positive")
	}
	if c.FromID == c.ToID {
		return shared.NewDomainError("notification", "SendMessage", shared.ErrInvalidArgument, "cannot message yourself")
	}
	if c.FromID == notification.SystemUserID {
		return shared.NewDomainError("notification", "SendMessage", shared.ErrForbidden, "system sender is reserved for notices")
	}
	if strings.TrimSpace(c.Content) == "" {
		return shared.NewDomainError("notification", "SendMessage", shared.ErrEmptyValue, "content is required")
	}
	return nil
}

// SendMessageHandler executes SendMessageCommand.
type SendMessageHandler struct {
	messages notification.MessageRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewSendMessageHandler creates a SendMessageHandler.
func NewSendMessageHandler(messages notification.MessageRepository, logger *slog.Logger) *SendMessageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendMessageHandler{messages: messages, logger: logger, now: time.Now}
}

// Handle stores the letter under the pair's deterministic conversation id and
// returns it with the assigned id.
func (h *SendMessageHandler) Handle(ctx context.Context, cmd SendMessageCommand) (*notification.Message, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	msg := &notification.Message{
		FromID:         cmd.FromID,
		ToID:           cmd.ToID,
		ConversationID: notification.ConversationID(cmd.FromID, cmd.ToID),
		Content:        cmd.Content,
		Status:         notification.StateUnread,
		CreatedAt:      h.now().UTC(),
	}
	if err := h.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	h.logger.Debug("letter sent",
		"from_id", cmd.FromID,
		"to_id", cmd.ToID,
		"conversation_id", msg.ConversationID,
	)
	return msg, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MARK READ COMMAND
// Bulk read-state transition over a batch of message ids.
// ══════════════════════════════════════════════════════════════════════════════

// MarkReadCommand contains the message ids to mark as read.
type MarkReadCommand struct {
	// IDs are the messages to transition.
	IDs []int64
}

// MarkReadHandler executes MarkReadCommand.
type MarkReadHandler struct {
	messages notification.MessageRepository
	logger   *slog.Logger
}

// NewMarkReadHandler creates a MarkReadHandler.
func NewMarkReadHandler(messages notification.MessageRepository, logger *slog.Logger) *MarkReadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkReadHandler{messages: messages, logger: logger}
}

// Handle marks the batch as read and returns how many messages actually
// transitioned. Already-read and deleted messages are left alone, so the
// call is idempotent.
func (h *MarkReadHandler) Handle(ctx context.Context, cmd MarkReadCommand) (int64, error) {
	changed, err := h.messages.MarkStatus(ctx, cmd.IDs, notification.StateRead)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		h.logger.Debug("messages marked read", "requested", len(cmd.IDs), "changed", changed)
	}
	return changed, nil
}
