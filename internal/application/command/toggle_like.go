// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/forum-hub/forum-engagement/internal/domain/engagement"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TOGGLE LIKE COMMAND
// Flips a user's like on a post or comment and notifies the author.
// ══════════════════════════════════════════════════════════════════════════════

// ToggleLikeCommand contains the data to toggle a like.
type ToggleLikeCommand struct {
	// UserID is the acting user.
	UserID int64

	// EntityKind is what is being liked: a post or a comment.
	EntityKind shared.EntityKind

	// EntityID is the id of the liked entity.
	EntityID int64

	// AuthorID is the author of the liked entity, the owner of the
	// per-user like aggregate.
	AuthorID int64

	// PostID is the post the entity belongs to, carried on the event so the
	// notice can link back to the page. For post likes it equals EntityID.
	PostID int64
}

// Validate validates the command.
func (c ToggleLikeCommand) Validate() error {
	if c.UserID <= 0 || c.EntityID <= 0 || c.AuthorID <= 0 {
		return shared.NewDomainError("engagement", "ToggleLike", shared.ErrInvalidID, "ids must be positive")
	}
	if c.EntityKind != shared.KindPost && c.EntityKind != shared.KindComment {
		return shared.NewDomainError("engagement", "ToggleLike", shared.ErrInvalidArgument, "likes target posts or comments")
	}
	return nil
}

// ToggleLikeResult contains the outcome of the toggle.
type ToggleLikeResult struct {
	// Liked is the definitive state after the toggle.
	Liked bool

	// LikeCount is the entity's like count after the toggle.
	LikeCount int64
}

// ToggleLikeHandler executes ToggleLikeCommand.
type ToggleLikeHandler struct {
	likes  engagement.LikeStore
	events shared.EventSink
	logger *slog.Logger
}

// NewToggleLikeHandler creates a ToggleLikeHandler.
func NewToggleLikeHandler(likes engagement.LikeStore, events shared.EventSink, logger *slog.Logger) *ToggleLikeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToggleLikeHandler{likes: likes, events: events, logger: logger}
}

// Handle toggles the like and, only when the entity became liked, publishes
// the like event. Unliking is silent; nobody is notified about a retraction.
func (h *ToggleLikeHandler) Handle(ctx context.Context, cmd ToggleLikeCommand) (*ToggleLikeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	liked, err := h.likes.ToggleLike(ctx, cmd.UserID, cmd.EntityKind, cmd.EntityID, cmd.AuthorID)
	if err != nil {
		return nil, err
	}

	count, err := h.likes.LikeCount(ctx, cmd.EntityKind, cmd.EntityID)
	if err != nil {
		return nil, err
	}

	if liked {
		ev := shared.NewEvent(shared.TopicLike, cmd.UserID, cmd.EntityKind, cmd.EntityID, cmd.AuthorID)
		if cmd.PostID > 0 {
			ev = ev.WithData("post_id", strconv.FormatInt(cmd.PostID, 10))
		}
		h.events.Publish(ev)
	}

	h.logger.Debug("like toggled",
		"user_id", cmd.UserID,
		"entity_kind", cmd.EntityKind,
		"entity_id", cmd.EntityID,
		"liked", liked,
	)
	return &ToggleLikeResult{Liked: liked, LikeCount: count}, nil
}
