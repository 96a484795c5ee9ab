// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/forum-hub/forum-engagement/internal/domain/post"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
	"github.com/forum-hub/forum-engagement/internal/infrastructure/cache"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET HOT POSTS QUERY
// Hot-ranked listing served through the two-tier cache.
// ══════════════════════════════════════════════════════════════════════════════

// GetHotPostsQuery contains paging parameters for the hot listing.
type GetHotPostsQuery struct {
	// Offset into the ranking.
	Offset int

	// Limit is the page size.
	Limit int
}

// HotPostsPage is one page of the hot listing.
type HotPostsPage struct {
	// PostIDs are the ranked post ids for this page.
	PostIDs []int64

	// Total is the global visible post count.
	Total int64
}

// GetHotPostsHandler executes GetHotPostsQuery.
type GetHotPostsHandler struct {
	hot   *cache.HotListCache
	posts post.Repository
}

// NewGetHotPostsHandler creates a GetHotPostsHandler.
func NewGetHotPostsHandler(hot *cache.HotListCache, posts post.Repository) *GetHotPostsHandler {
	return &GetHotPostsHandler{hot: hot, posts: posts}
}

// Handle returns the cached hot page together with the cached global count.
func (h *GetHotPostsHandler) Handle(ctx context.Context, q GetHotPostsQuery) (*HotPostsPage, error) {
	if q.Offset < 0 || q.Limit <= 0 {
		return nil, shared.NewDomainError("post", "GetHotPosts", shared.ErrInvalidArgument, "offset must be >= 0 and limit > 0")
	}

	ids, err := h.hot.HotPostPage(ctx, q.Offset, q.Limit)
	if err != nil {
		return nil, err
	}
	total, err := h.hot.TotalPostCount(ctx, 0)
	if err != nil {
		return nil, err
	}
	return &HotPostsPage{PostIDs: ids, Total: total}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST POSTS QUERY
// Uncached listings: per-user scopes and the latest ordering.
// ══════════════════════════════════════════════════════════════════════════════

// ListPostsQuery contains parameters for a post listing.
type ListPostsQuery struct {
	// ScopeUserID restricts the listing to one author; 0 lists all.
	ScopeUserID int64

	// Offset into the listing.
	Offset int

	// Limit is the page size.
	Limit int

	// Order selects latest or hot ordering.
	Order post.OrderMode
}

// PostsPage is one page of a post listing.
type PostsPage struct {
	Posts []post.Post
	Total int64
}

// ListPostsHandler executes ListPostsQuery straight against the repository.
// The cache only fronts the global hot view; everything else reads fresh.
type ListPostsHandler struct {
	posts post.Repository
	hot   *cache.HotListCache
}

// NewListPostsHandler creates a ListPostsHandler.
func NewListPostsHandler(posts post.Repository, hot *cache.HotListCache) *ListPostsHandler {
	return &ListPostsHandler{posts: posts, hot: hot}
}

// Handle returns one listing page with the scope's total.
func (h *ListPostsHandler) Handle(ctx context.Context, q ListPostsQuery) (*PostsPage, error) {
	if q.ScopeUserID < 0 {
		return nil, shared.NewDomainError("post", "ListPosts", shared.ErrInvalidID, "scope user id cannot be negative")
	}
	if q.Offset < 0 || q.Limit <= 0 {
		return nil, shared.NewDomainError("post", "ListPosts", shared.ErrInvalidArgument, "offset must be >= 0 and limit > 0")
	}

	rows, err := h.posts.Page(ctx, q.ScopeUserID, q.Offset, q.Limit, q.Order)
	if err != nil {
		return nil, err
	}
	total, err := h.hot.TotalPostCount(ctx, q.ScopeUserID)
	if err != nil {
		return nil, err
	}
	return &PostsPage{Posts: rows, Total: total}, nil
}
