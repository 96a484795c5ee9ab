package redis

import (
	"strconv"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// Key naming scheme for the shared key-value store. The format is persisted
// and read by external consumers, so it must stay stable.
const (
	keySeparator      = ":"
	prefixEntityLike  = "like:entity"
	prefixUserLike    = "like:user"
	prefixFollowee    = "followee"
	prefixFollower    = "follower"
	prefixEventStream = "events"
	prefixEventSeen   = "events:seen"
)

// EntityLikeKey is the set of user ids that currently like an entity.
// like:entity:<entityKind>:<entityId> -> SET(userId)
func EntityLikeKey(kind shared.EntityKind, entityID int64) string {
	return prefixEntityLike + keySeparator + kind.String() + keySeparator + strconv.FormatInt(entityID, 10)
}

// UserLikeKey is the total likes received by a user across all their content.
// like:user:<userId> -> INT
func UserLikeKey(userID int64) string {
	return prefixUserLike + keySeparator + strconv.FormatInt(userID, 10)
}

// FolloweeKey is the entities of one kind that a user follows.
// followee:<userId>:<entityKind> -> ZSET(entityId, followedAt)
func FolloweeKey(followerID int64, kind shared.EntityKind) string {
	return prefixFollowee + keySeparator + strconv.FormatInt(followerID, 10) + keySeparator + kind.String()
}

// FollowerKey is the users that follow an entity.
// follower:<entityKind>:<entityId> -> ZSET(userId, followedAt)
func FollowerKey(kind shared.EntityKind, entityID int64) string {
	return prefixFollower + keySeparator + kind.String() + keySeparator + strconv.FormatInt(entityID, 10)
}

// StreamKey is the broker stream a topic's events are appended to.
// events:<topic> -> STREAM
func StreamKey(topic shared.Topic) string {
	return prefixEventStream + keySeparator + string(topic)
}

// EventSeenKey marks a delivered event for consumer-side deduplication.
// events:seen:<dedupKey> -> 1 (with expiry)
func EventSeenKey(dedupKey string) string {
	return prefixEventSeen + keySeparator + dedupKey
}
