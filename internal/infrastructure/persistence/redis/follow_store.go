package redis

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forum-hub/forum-engagement/internal/domain/engagement"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FOLLOW STORE
// ══════════════════════════════════════════════════════════════════════════════

// FollowStore maintains the mirrored follow graph: a followee ZSET per
// follower and a follower ZSET per followee, both scored by follow time in
// milliseconds. It exclusively owns the followee:* and follower:* key space.
//
// The mirrored write runs in one MULTI/EXEC block, which keeps the pair
// atomic against concurrent observers. It is not durable across a store
// crash between replication of the two keys; reads that observe asymmetry
// treat the follower set as canonical for follower counts.
type FollowStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewFollowStore creates a FollowStore.
func NewFollowStore(client *redis.Client, logger *slog.Logger) *FollowStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FollowStore{client: client, logger: logger}
}

// Follow inserts the edge into both mirrored sets. Re-following an existing
// edge is a no-op: the original follow time is preserved.
func (s *FollowStore) Follow(ctx context.Context, followerID int64, kind shared.EntityKind, followeeID int64, at time.Time) error {
	if err := validateEdge(followerID, kind, followeeID); err != nil {
		return err
	}

	followeeKey := FolloweeKey(followerID, kind)
	followerKey := FollowerKey(kind, followeeID)

	exists, err := s.IsFollowing(ctx, followerID, kind, followeeID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	score := float64(at.UnixMilli())
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, followeeKey, redis.Z{Score: score, Member: followeeID})
		pipe.ZAdd(ctx, followerKey, redis.Z{Score: score, Member: followerID})
		return nil
	})
	if err != nil {
		return storeErr("follow", "Follow", err)
	}
	return nil
}

// Unfollow removes the edge from both mirrored sets. No-op if absent.
func (s *FollowStore) Unfollow(ctx context.Context, followerID int64, kind shared.EntityKind, followeeID int64) error {
	if err := validateEdge(followerID, kind, followeeID); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, FolloweeKey(followerID, kind), followeeID)
		pipe.ZRem(ctx, FollowerKey(kind, followeeID), followerID)
		return nil
	})
	if err != nil {
		return storeErr("follow", "Unfollow", err)
	}
	return nil
}

// IsFollowing reports whether the edge exists, checked on the followee side.
func (s *FollowStore) IsFollowing(ctx context.Context, followerID int64, kind shared.EntityKind, followeeID int64) (bool, error) {
	if err := validateEdge(followerID, kind, followeeID); err != nil {
		return false, err
	}

	_, err := s.client.ZScore(ctx, FolloweeKey(followerID, kind), strconv.FormatInt(followeeID, 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, storeErr("follow", "IsFollowing", err)
	}
	return true, nil
}

// FolloweeCount returns how many entities of the kind the user follows.
func (s *FollowStore) FolloweeCount(ctx context.Context, followerID int64, kind shared.EntityKind) (int64, error) {
	if followerID <= 0 || !kind.IsValid() {
		return 0, shared.NewDomainError("follow", "FolloweeCount", shared.ErrInvalidArgument, "malformed follower")
	}

	n, err := s.client.ZCard(ctx, FolloweeKey(followerID, kind)).Result()
	if err != nil {
		return 0, storeErr("follow", "FolloweeCount", err)
	}
	return n, nil
}

// FollowerCount returns how many users follow the entity. The follower set
// is the canonical side for this count.
func (s *FollowStore) FollowerCount(ctx context.Context, kind shared.EntityKind, entityID int64) (int64, error) {
	if !kind.IsValid() || entityID <= 0 {
		return 0, shared.NewDomainError("follow", "FollowerCount", shared.ErrInvalidArgument, "malformed followee")
	}

	n, err := s.client.ZCard(ctx, FollowerKey(kind, entityID)).Result()
	if err != nil {
		return 0, storeErr("follow", "FollowerCount", err)
	}
	return n, nil
}

// ListFollowees pages through the user's followees, most recent follow first.
// Ordering is by follow-time score descending and is stable across page
// boundaries for a fixed edge set.
func (s *FollowStore) ListFollowees(ctx context.Context, followerID int64, kind shared.EntityKind, offset, limit int) ([]engagement.Edge, error) {
	if followerID <= 0 || !kind.IsValid() {
		return nil, shared.NewDomainError("follow", "ListFollowees", shared.ErrInvalidArgument, "malformed follower")
	}
	return s.page(ctx, "ListFollowees", FolloweeKey(followerID, kind), offset, limit)
}

// ListFollowers pages through the entity's followers, most recent follow first.
func (s *FollowStore) ListFollowers(ctx context.Context, kind shared.EntityKind, entityID int64, offset, limit int) ([]engagement.Edge, error) {
	if !kind.IsValid() || entityID <= 0 {
		return nil, shared.NewDomainError("follow", "ListFollowers", shared.ErrInvalidArgument, "malformed followee")
	}
	return s.page(ctx, "ListFollowers", FollowerKey(kind, entityID), offset, limit)
}

// page reads one ZREVRANGE page of a follow ZSET as edges.
func (s *FollowStore) page(ctx context.Context, op, key string, offset, limit int) ([]engagement.Edge, error) {
	if offset < 0 || limit <= 0 {
		return nil, shared.NewDomainError("follow", op, shared.ErrInvalidArgument, "offset must be >= 0 and limit > 0")
	}

	members, err := s.client.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, storeErr("follow", op, err)
	}

	edges := make([]engagement.Edge, 0, len(members))
	for _, z := range members {
		raw, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.logger.Warn("skipping non-numeric follow member", "key", key, "member", raw)
			continue
		}
		edges = append(edges, engagement.Edge{
			ID:         id,
			FollowedAt: time.UnixMilli(int64(z.Score)),
		})
	}
	return edges, nil
}

// validateEdge checks the (follower, kind, followee) triple.
func validateEdge(followerID int64, kind shared.EntityKind, followeeID int64) error {
	if followerID <= 0 || followeeID <= 0 {
		return shared.NewDomainError("follow", "Validate", shared.ErrInvalidID, "ids must be positive")
	}
	if !kind.IsValid() {
		return shared.NewDomainError("follow", "Validate", shared.ErrInvalidArgument, "unknown entity kind")
	}
	if kind == shared.KindUser && followerID == followeeID {
		return shared.NewDomainError("follow", "Validate", shared.ErrInvalidArgument, "cannot follow self")
	}
	return nil
}
