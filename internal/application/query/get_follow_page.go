package query

import (
	"context"

	"github.com/forum-hub/forum-engagement/internal/domain/engagement"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET FOLLOW PAGE QUERY
// Follower/followee listings with counts, plus the viewer's own edges.
// ══════════════════════════════════════════════════════════════════════════════

// FollowEntry is one listed edge annotated for the viewing user.
type FollowEntry struct {
	engagement.Edge

	// FollowedByViewer reports whether the viewing user follows this entry.
	FollowedByViewer bool
}

// FollowPage is one page of a follow listing.
type FollowPage struct {
	Entries []FollowEntry
	Total   int64
}

// GetFollowPageHandler executes follow graph queries.
type GetFollowPageHandler struct {
	graph engagement.FollowGraph
}

// NewGetFollowPageHandler creates a GetFollowPageHandler.
func NewGetFollowPageHandler(graph engagement.FollowGraph) *GetFollowPageHandler {
	return &GetFollowPageHandler{graph: graph}
}

// Followees pages the entities a user follows, most recent first. viewerID
// annotates each entry with the viewer's own follow state; pass the listed
// user's id to view one's own page, or 0 to skip annotation.
func (h *GetFollowPageHandler) Followees(ctx context.Context, userID int64, kind shared.EntityKind, viewerID int64, offset, limit int) (*FollowPage, error) {
	if userID <= 0 {
		return nil, shared.NewDomainError("engagement", "Followees", shared.ErrInvalidID, "user id must be positive")
	}

	edges, err := h.graph.ListFollowees(ctx, userID, kind, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := h.graph.FolloweeCount(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	entries, err := h.annotate(ctx, edges, kind, viewerID)
	if err != nil {
		return nil, err
	}
	return &FollowPage{Entries: entries, Total: total}, nil
}

// Followers pages the users following an entity, most recent first.
func (h *GetFollowPageHandler) Followers(ctx context.Context, kind shared.EntityKind, entityID, viewerID int64, offset, limit int) (*FollowPage, error) {
	if entityID <= 0 {
		return nil, shared.NewDomainError("engagement", "Followers", shared.ErrInvalidID, "entity id must be positive")
	}

	edges, err := h.graph.ListFollowers(ctx, kind, entityID, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := h.graph.FollowerCount(ctx, kind, entityID)
	if err != nil {
		return nil, err
	}
	// Followers are users, so the viewer annotation checks user edges.
	entries, err := h.annotate(ctx, edges, shared.KindUser, viewerID)
	if err != nil {
		return nil, err
	}
	return &FollowPage{Entries: entries, Total: total}, nil
}

// IsFollowing reports whether the user follows the entity.
func (h *GetFollowPageHandler) IsFollowing(ctx context.Context, followerID int64, kind shared.EntityKind, entityID int64) (bool, error) {
	return h.graph.IsFollowing(ctx, followerID, kind, entityID)
}

// annotate resolves the viewer's follow state for each edge.
func (h *GetFollowPageHandler) annotate(ctx context.Context, edges []engagement.Edge, kind shared.EntityKind, viewerID int64) ([]FollowEntry, error) {
	entries := make([]FollowEntry, 0, len(edges))
	for _, e := range edges {
		entry := FollowEntry{Edge: e}
		if viewerID > 0 && !(kind == shared.KindUser && e.ID == viewerID) {
			followed, err := h.graph.IsFollowing(ctx, viewerID, kind, e.ID)
			if err != nil {
				return nil, err
			}
			entry.FollowedByViewer = followed
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
