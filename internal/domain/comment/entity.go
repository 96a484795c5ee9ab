// Package comment contains the comment entity and its persistent-store port.
package comment

import (
	"time"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// Comment is a comment on a post or a reply to another comment.
type Comment struct {
	// ID is the store-assigned monotonic id.
	ID int64

	// UserID is the comment author.
	UserID int64

	// EntityKind is what the comment targets: a post or another comment.
	EntityKind shared.EntityKind

	// EntityID is the id of the targeted post or comment.
	EntityID int64

	// TargetID is the user a reply addresses directly, 0 otherwise.
	TargetID int64

	// Content is the comment body.
	Content string

	// Status 0 is visible, anything else is hidden.
	Status int

	// CreatedAt is when the comment was written.
	CreatedAt time.Time
}
