package command

import (
	"context"
	"log/slog"

	"github.com/forum-hub/forum-engagement/internal/domain/post"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MODERATE POST COMMANDS
// Pinning and featuring. Both re-publish the post so the index stays fresh.
// ══════════════════════════════════════════════════════════════════════════════

// ModeratePostCommand contains the data for a moderation action.
type ModeratePostCommand struct {
	// ActorID is the moderating user.
	ActorID int64

	// ActorRole must carry the pin or feature capability.
	ActorRole shared.Role

	// PostID is the post being moderated.
	PostID int64
}

// Validate validates the command.
func (c ModeratePostCommand) Validate() error {
	if c.ActorID <= 0 || c.PostID <= 0 {
		return shared.NewDomainError("post", "ModeratePost", shared.ErrInvalidID, "ids must be positive")
	}
	return nil
}

// ModeratePostHandler executes pin and feature commands.
type ModeratePostHandler struct {
	posts  post.Repository
	events shared.EventSink
	logger *slog.Logger
}

// NewModeratePostHandler creates a ModeratePostHandler.
func NewModeratePostHandler(posts post.Repository, events shared.EventSink, logger *slog.Logger) *ModeratePostHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModeratePostHandler{posts: posts, events: events, logger: logger}
}

// Pin raises the post to the top of every listing.
func (h *ModeratePostHandler) Pin(ctx context.Context, cmd ModeratePostCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if !shared.HasCapability(cmd.ActorRole, shared.CapabilityPin) {
		return shared.NewDomainError("post", "PinPost", shared.ErrForbidden, "not allowed to pin posts")
	}

	if err := h.posts.UpdateType(ctx, cmd.PostID, post.TypePinned); err != nil {
		return err
	}
	h.events.Publish(shared.NewEvent(shared.TopicPublish, cmd.ActorID, shared.KindPost, cmd.PostID, 0))

	h.logger.Info("post pinned", "post_id", cmd.PostID, "actor_id", cmd.ActorID)
	return nil
}

// Feature highlights the post.
func (h *ModeratePostHandler) Feature(ctx context.Context, cmd ModeratePostCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if !shared.HasCapability(cmd.ActorRole, shared.CapabilityFeature) {
		return shared.NewDomainError("post", "FeaturePost", shared.ErrForbidden, "not allowed to feature posts")
	}

	if err := h.posts.UpdateStatus(ctx, cmd.PostID, post.StatusFeatured); err != nil {
		return err
	}
	h.events.Publish(shared.NewEvent(shared.TopicPublish, cmd.ActorID, shared.KindPost, cmd.PostID, 0))

	h.logger.Info("post featured", "post_id", cmd.PostID, "actor_id", cmd.ActorID)
	return nil
}
