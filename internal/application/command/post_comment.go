package command

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/forum-hub/forum-engagement/internal/domain/comment"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// POST COMMENT COMMAND
// Stores a comment, refreshes the parent post's counter and notifies the
// author of the commented content.
// ══════════════════════════════════════════════════════════════════════════════

// PostCommentCommand contains the data to add a comment.
type PostCommentCommand struct {
	// UserID is the commenting user.
	UserID int64

	// EntityKind is what is being commented: a post or a comment.
	EntityKind shared.EntityKind

	// EntityID is the id of the commented entity.
	EntityID int64

	// AuthorID is the author of the commented entity, the recipient of the
	// comment notice.
	AuthorID int64

	// TargetID optionally addresses a specific user in a reply.
	TargetID int64

	// PostID is the post the comment thread belongs to. For post comments it
	// equals EntityID.
	PostID int64

	// Content is the comment body.
	Content string
}

// Validate validates the command.
func (c PostCommentCommand) Validate() error {
	if c.UserID <= 0 || c.EntityID <= 0 || c.AuthorID <= 0 {
		return shared.NewDomainError("comment", "PostComment", shared.ErrInvalidID, "ids must be positive")
	}
	if c.EntityKind != shared.KindPost && c.EntityKind != shared.KindComment {
		return shared.NewDomainError("comment", "PostComment", shared.ErrInvalidArgument, "comments target posts or comments")
	}
	if strings.TrimSpace(c.Content) == "" {
		return shared.NewDomainError("comment", "PostComment", shared.ErrEmptyValue, "content is required")
	}
	return nil
}

// PostCommentHandler executes PostCommentCommand.
type PostCommentHandler struct {
	comments comment.Repository
	events   shared.EventSink
	logger   *slog.Logger
	now      func() time.Time
}

// NewPostCommentHandler creates a PostCommentHandler.
func NewPostCommentHandler(comments comment.Repository, events shared.EventSink, logger *slog.Logger) *PostCommentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostCommentHandler{comments: comments, events: events, logger: logger, now: time.Now}
}

// Handle stores the comment and publishes the comment event. The insert and
// the parent post's counter refresh happen in one store transaction; the
// event goes out only after that transaction commits.
func (h *PostCommentHandler) Handle(ctx context.Context, cmd PostCommentCommand) (*comment.Comment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	cm := &comment.Comment{
		UserID:     cmd.UserID,
		EntityKind: cmd.EntityKind,
		EntityID:   cmd.EntityID,
		TargetID:   cmd.TargetID,
		Content:    cmd.Content,
		CreatedAt:  h.now().UTC(),
	}
	if err := h.comments.Add(ctx, cm); err != nil {
		return nil, err
	}

	ev := shared.NewEvent(shared.TopicComment, cmd.UserID, cmd.EntityKind, cmd.EntityID, cmd.AuthorID)
	if cmd.PostID > 0 {
		ev = ev.WithData("post_id", strconv.FormatInt(cmd.PostID, 10))
	}
	h.events.Publish(ev)

	h.logger.Debug("comment posted",
		"comment_id", cm.ID,
		"user_id", cmd.UserID,
		"entity_kind", cmd.EntityKind,
		"entity_id", cmd.EntityID,
	)
	return cm, nil
}
