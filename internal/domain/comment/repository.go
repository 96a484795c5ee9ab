package comment

import (
	"context"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// Repository is the relational-store port for comments.
//
// Add is a unit of work: inserting the comment and refreshing the parent
// post's comment_count must commit atomically at the store boundary. The
// counter is recomputed from a live count inside the same transaction rather
// than trusting an incremental delta.
type Repository interface {
	// Add inserts the comment and, for post comments, refreshes the post's
	// comment count in the same transaction. Fills in the assigned id.
	Add(ctx context.Context, c *Comment) error

	// ByID returns the comment or ErrNotFound.
	ByID(ctx context.Context, id int64) (*Comment, error)

	// CountByEntity counts visible comments on a target.
	CountByEntity(ctx context.Context, kind shared.EntityKind, entityID int64) (int64, error)

	// PageByEntity lists visible comments on a target, oldest first.
	PageByEntity(ctx context.Context, kind shared.EntityKind, entityID int64, offset, limit int) ([]Comment, error)
}
