package command

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/forum-hub/forum-engagement/internal/domain/post"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUBLISH / DELETE POST COMMANDS
// Post lifecycle writes that feed the search index through events.
// ══════════════════════════════════════════════════════════════════════════════

// PublishPostCommand contains the data to publish a post.
type PublishPostCommand struct {
	// UserID is the publishing user.
	UserID int64

	// Title is the post title.
	Title string

	// Content is the post body.
	Content string
}

// Validate validates the command.
func (c PublishPostCommand) Validate() error {
	if c.UserID <= 0 {
		return shared.NewDomainError("post", "PublishPost", shared.ErrInvalidID, "user id must be positive")
	}
	if strings.TrimSpace(c.Title) == "" {
		return shared.NewDomainError("post", "PublishPost", shared.ErrEmptyValue, "title is required")
	}
	return nil
}

// DeletePostCommand contains the data to remove a post.
type DeletePostCommand struct {
	// ActorID is the user requesting removal.
	ActorID int64

	// ActorRole decides whether the actor may remove posts they do not own.
	ActorRole shared.Role

	// PostID is the post to remove.
	PostID int64
}

// PostLifecycleHandler executes post publish and delete commands.
type PostLifecycleHandler struct {
	posts  post.Repository
	events shared.EventSink
	logger *slog.Logger
	now    func() time.Time
}

// NewPostLifecycleHandler creates a PostLifecycleHandler.
func NewPostLifecycleHandler(posts post.Repository, events shared.EventSink, logger *slog.Logger) *PostLifecycleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostLifecycleHandler{posts: posts, events: events, logger: logger, now: time.Now}
}

// Publish stores the post and publishes the publish event so the search
// index picks it up.
func (h *PostLifecycleHandler) Publish(ctx context.Context, cmd PublishPostCommand) (*post.Post, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p := &post.Post{
		UserID:    cmd.UserID,
		Title:     cmd.Title,
		Content:   cmd.Content,
		Type:      post.TypeNormal,
		Status:    post.StatusNormal,
		CreatedAt: h.now().UTC(),
	}
	if err := h.posts.Insert(ctx, p); err != nil {
		return nil, err
	}

	h.events.Publish(shared.NewEvent(shared.TopicPublish, cmd.UserID, shared.KindPost, p.ID, 0))

	h.logger.Info("post published", "post_id", p.ID, "user_id", cmd.UserID)
	return p, nil
}

// Delete marks the post removed and publishes the delete event so it leaves
// the search index. Owners may remove their own posts; moderators and admins
// may remove any post.
func (h *PostLifecycleHandler) Delete(ctx context.Context, cmd DeletePostCommand) error {
	if cmd.ActorID <= 0 || cmd.PostID <= 0 {
		return shared.NewDomainError("post", "DeletePost", shared.ErrInvalidID, "ids must be positive")
	}

	p, err := h.posts.ByID(ctx, cmd.PostID)
	if err != nil {
		return err
	}
	if p.UserID != cmd.ActorID && !shared.HasCapability(cmd.ActorRole, shared.CapabilityTakedown) {
		return shared.NewDomainError("post", "DeletePost", shared.ErrForbidden, "not allowed to remove this post")
	}

	if err := h.posts.UpdateStatus(ctx, cmd.PostID, post.StatusRemoved); err != nil {
		return err
	}

	h.events.Publish(shared.NewEvent(shared.TopicDelete, cmd.ActorID, shared.KindPost, cmd.PostID, 0))

	h.logger.Info("post removed", "post_id", cmd.PostID, "actor_id", cmd.ActorID)
	return nil
}
