package query

import (
	"context"

	"github.com/forum-hub/forum-engagement/internal/domain/engagement"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ENGAGEMENT QUERY
// Like counts and statuses for rendering an entity, and the profile aggregate.
// ══════════════════════════════════════════════════════════════════════════════

// EntityEngagement is the like state of one entity as seen by a viewer.
type EntityEngagement struct {
	// LikeCount is how many users like the entity.
	LikeCount int64

	// LikedByViewer reports whether the viewing user likes it.
	LikedByViewer bool
}

// GetEngagementHandler executes engagement read queries.
type GetEngagementHandler struct {
	likes engagement.LikeStore
}

// NewGetEngagementHandler creates a GetEngagementHandler.
func NewGetEngagementHandler(likes engagement.LikeStore) *GetEngagementHandler {
	return &GetEngagementHandler{likes: likes}
}

// Entity returns the entity's like count and the viewer's like status.
// viewerID 0 skips the status lookup.
func (h *GetEngagementHandler) Entity(ctx context.Context, viewerID int64, kind shared.EntityKind, entityID int64) (*EntityEngagement, error) {
	count, err := h.likes.LikeCount(ctx, kind, entityID)
	if err != nil {
		return nil, err
	}

	eng := &EntityEngagement{LikeCount: count}
	if viewerID > 0 {
		liked, err := h.likes.LikeStatus(ctx, viewerID, kind, entityID)
		if err != nil {
			return nil, err
		}
		eng.LikedByViewer = liked
	}
	return eng, nil
}

// UserAggregate returns the total likes received across a user's content.
func (h *GetEngagementHandler) UserAggregate(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, shared.NewDomainError("engagement", "UserAggregate", shared.ErrInvalidID, "user id must be positive")
	}
	return h.likes.UserLikeAggregate(ctx, userID)
}
