package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/forum-hub/forum-engagement/internal/domain/engagement"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FOLLOW / UNFOLLOW COMMANDS
// Maintains the mirrored follow graph and notifies followed users.
// ══════════════════════════════════════════════════════════════════════════════

// FollowCommand contains the data to follow or unfollow an entity.
type FollowCommand struct {
	// FollowerID is the acting user.
	FollowerID int64

	// EntityKind is the kind of entity being followed.
	EntityKind shared.EntityKind

	// EntityID is the id of the followed entity.
	EntityID int64
}

// Validate validates the command.
func (c FollowCommand) Validate() error {
	if c.FollowerID <= 0 || c.EntityID <= 0 {
		return shared.NewDomainError("engagement", "Follow", shared.ErrInvalidID, "ids must be positive")
	}
	if !c.EntityKind.IsValid() {
		return shared.NewDomainError("engagement", "Follow", shared.ErrInvalidArgument, "unknown entity kind")
	}
	if c.EntityKind == shared.KindUser && c.FollowerID == c.EntityID {
		return shared.NewDomainError("engagement", "Follow", shared.ErrInvalidArgument, "users cannot follow themselves")
	}
	return nil
}

// FollowHandler executes follow and unfollow commands.
type FollowHandler struct {
	graph  engagement.FollowGraph
	events shared.EventSink
	logger *slog.Logger
	now    func() time.Time
}

// NewFollowHandler creates a FollowHandler.
func NewFollowHandler(graph engagement.FollowGraph, events shared.EventSink, logger *slog.Logger) *FollowHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FollowHandler{graph: graph, events: events, logger: logger, now: time.Now}
}

// Follow inserts the edge and publishes the follow event. Following a user
// notifies them; following other kinds is silent on the notice side but the
// event is published regardless for downstream consumers.
func (h *FollowHandler) Follow(ctx context.Context, cmd FollowCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.graph.Follow(ctx, cmd.FollowerID, cmd.EntityKind, cmd.EntityID, h.now().UTC()); err != nil {
		return err
	}

	var authorID int64
	if cmd.EntityKind == shared.KindUser {
		authorID = cmd.EntityID
	}
	h.events.Publish(shared.NewEvent(shared.TopicFollow, cmd.FollowerID, cmd.EntityKind, cmd.EntityID, authorID))

	h.logger.Debug("followed",
		"follower_id", cmd.FollowerID,
		"entity_kind", cmd.EntityKind,
		"entity_id", cmd.EntityID,
	)
	return nil
}

// Unfollow removes the edge. No event is published; retractions do not
// notify anyone.
func (h *FollowHandler) Unfollow(ctx context.Context, cmd FollowCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.graph.Unfollow(ctx, cmd.FollowerID, cmd.EntityKind, cmd.EntityID); err != nil {
		return err
	}

	h.logger.Debug("unfollowed",
		"follower_id", cmd.FollowerID,
		"entity_kind", cmd.EntityKind,
		"entity_id", cmd.EntityID,
	)
	return nil
}
