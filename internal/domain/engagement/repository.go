// Package engagement defines the ports for the high-churn like and follow
// state kept in the shared key-value store. Implementations live in
// internal/infrastructure/persistence/redis.
package engagement

import (
	"context"
	"time"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// LikeStore tracks liker sets per engagement target and the per-user
// aggregate of likes received.
type LikeStore interface {
	// ToggleLike flips the like state of (userID, kind, entityID) and keeps
	// the author's aggregate in step, atomically. Returns the definitive new
	// state: true if the entity is now liked by the user.
	ToggleLike(ctx context.Context, userID int64, kind shared.EntityKind, entityID, authorID int64) (bool, error)

	// LikeCount returns the cardinality of the target's liker set.
	LikeCount(ctx context.Context, kind shared.EntityKind, entityID int64) (int64, error)

	// LikeStatus reports whether the user currently likes the target.
	LikeStatus(ctx context.Context, userID int64, kind shared.EntityKind, entityID int64) (bool, error)

	// UserLikeAggregate returns the total likes received across all content
	// authored by the user. Absent counters read as 0; negative counters are
	// clamped to 0 and reported as integrity drift.
	UserLikeAggregate(ctx context.Context, userID int64) (int64, error)
}

// Edge is one entry in a follow listing, ordered by follow time.
type Edge struct {
	// ID is the followee's entity id (followee listing) or the follower's
	// user id (follower listing).
	ID int64

	// FollowedAt is when the edge was created.
	FollowedAt time.Time
}

// FollowGraph maintains the mirrored follower/followee ordered sets.
// The two sides are written together but not transactionally across keys;
// on observed asymmetry the follower set is canonical for counts.
type FollowGraph interface {
	// Follow inserts the edge into both mirrored sets. No-op if it exists.
	Follow(ctx context.Context, followerID int64, kind shared.EntityKind, followeeID int64, at time.Time) error

	// Unfollow removes the edge from both mirrored sets. No-op if absent.
	Unfollow(ctx context.Context, followerID int64, kind shared.EntityKind, followeeID int64) error

	// IsFollowing reports whether the edge exists (followee side).
	IsFollowing(ctx context.Context, followerID int64, kind shared.EntityKind, followeeID int64) (bool, error)

	// FolloweeCount returns how many entities of the kind the user follows.
	FolloweeCount(ctx context.Context, followerID int64, kind shared.EntityKind) (int64, error)

	// FollowerCount returns how many users follow the entity.
	FollowerCount(ctx context.Context, kind shared.EntityKind, entityID int64) (int64, error)

	// ListFollowees pages through the user's followees, most recent first.
	ListFollowees(ctx context.Context, followerID int64, kind shared.EntityKind, offset, limit int) ([]Edge, error)

	// ListFollowers pages through the entity's followers, most recent first.
	ListFollowers(ctx context.Context, kind shared.EntityKind, entityID int64, offset, limit int) ([]Edge, error)
}
