package post

import "context"

// Repository is the relational-store port for posts. The store assigns
// monotonic ids; removed posts stay as soft tombstones.
type Repository interface {
	// ByID returns the post or ErrNotFound. Removed posts are not returned.
	ByID(ctx context.Context, id int64) (*Post, error)

	// Insert stores a post and fills in its assigned id.
	Insert(ctx context.Context, p *Post) error

	// Rows counts visible posts. scopeUserID 0 counts across all users.
	Rows(ctx context.Context, scopeUserID int64) (int64, error)

	// Page lists visible posts with offset+limit. scopeUserID 0 lists all
	// users; order selects latest or hot ranking. Pinned posts lead in both.
	Page(ctx context.Context, scopeUserID int64, offset, limit int, order OrderMode) ([]Post, error)

	// HotIDs returns one page of the global hot-ranked post ids. This is the
	// query the hot-list cache fronts.
	HotIDs(ctx context.Context, offset, limit int) ([]int64, error)

	// UpdateStatus flips a post's moderation status.
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// UpdateType flips a post's pinning level.
	UpdateType(ctx context.Context, id int64, t Type) error

	// UpdateScore stores a recomputed ranking score.
	UpdateScore(ctx context.Context, id int64, score float64) error
}
