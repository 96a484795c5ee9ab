package redis

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENGAGEMENT STORE
// ══════════════════════════════════════════════════════════════════════════════

// toggleRetries bounds the optimistic-transaction loop in ToggleLike. A lost
// race means a competing toggle on the same key committed first; three
// attempts is plenty for a per-(user,entity) hot spot.
const toggleRetries = 3

// ErrToggleContention is returned when ToggleLike loses the optimistic
// transaction race on every attempt.
var ErrToggleContention = errors.New("engagement: toggle contention, retries exhausted")

// EngagementStore tracks liker sets and per-user like aggregates in the
// shared key-value store. It exclusively owns the like:* key space.
type EngagementStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewEngagementStore creates an EngagementStore.
func NewEngagementStore(client *redis.Client, logger *slog.Logger) *EngagementStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EngagementStore{client: client, logger: logger}
}

// ToggleLike flips the like state of (userID, kind, entityID) and adjusts the
// author's aggregate in the same MULTI/EXEC block.
//
// The read-then-branch-then-write runs under WATCH on the liker-set key:
// if a competing toggle commits between the membership read and EXEC, the
// transaction fails and is retried with a fresh read, so two concurrent
// toggles can never both observe "absent" and both increment.
func (s *EngagementStore) ToggleLike(ctx context.Context, userID int64, kind shared.EntityKind, entityID, authorID int64) (bool, error) {
	if err := validateTarget(userID, kind, entityID); err != nil {
		return false, err
	}
	if authorID <= 0 {
		return false, shared.NewDomainError("engagement", "ToggleLike", shared.ErrInvalidID, "author id must be positive")
	}

	likeKey := EntityLikeKey(kind, entityID)
	aggKey := UserLikeKey(authorID)

	var liked bool
	txn := func(tx *redis.Tx) error {
		member, err := tx.SIsMember(ctx, likeKey, userID).Result()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if member {
				pipe.SRem(ctx, likeKey, userID)
				pipe.Decr(ctx, aggKey)
			} else {
				pipe.SAdd(ctx, likeKey, userID)
				pipe.Incr(ctx, aggKey)
			}
			return nil
		})
		if err != nil {
			return err
		}

		liked = !member
		return nil
	}

	for attempt := 0; attempt < toggleRetries; attempt++ {
		err := s.client.Watch(ctx, txn, likeKey)
		if err == nil {
			return liked, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("toggle transaction lost race, retrying",
				"entity_kind", kind.Name(), "entity_id", entityID, "user_id", userID)
			continue
		}
		return false, storeErr("engagement", "ToggleLike", err)
	}

	return false, shared.WrapError("engagement", "ToggleLike", shared.ErrTxConflict,
		"optimistic transaction kept losing", ErrToggleContention)
}

// LikeCount returns the cardinality of the target's liker set.
func (s *EngagementStore) LikeCount(ctx context.Context, kind shared.EntityKind, entityID int64) (int64, error) {
	if !kind.IsValid() || entityID <= 0 {
		return 0, shared.NewDomainError("engagement", "LikeCount", shared.ErrInvalidArgument, "malformed target")
	}

	n, err := s.client.SCard(ctx, EntityLikeKey(kind, entityID)).Result()
	if err != nil {
		return 0, storeErr("engagement", "LikeCount", err)
	}
	return n, nil
}

// LikeStatus reports whether the user currently likes the target.
func (s *EngagementStore) LikeStatus(ctx context.Context, userID int64, kind shared.EntityKind, entityID int64) (bool, error) {
	if err := validateTarget(userID, kind, entityID); err != nil {
		return false, err
	}

	member, err := s.client.SIsMember(ctx, EntityLikeKey(kind, entityID), userID).Result()
	if err != nil {
		return false, storeErr("engagement", "LikeStatus", err)
	}
	return member, nil
}

// UserLikeAggregate returns the total likes received by the user. A missing
// counter reads as 0. A negative counter is a data-integrity fault from a
// past partial failure: it is logged and clamped to 0, never surfaced.
func (s *EngagementStore) UserLikeAggregate(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, shared.NewDomainError("engagement", "UserLikeAggregate", shared.ErrInvalidID, "user id must be positive")
	}

	raw, err := s.client.Get(ctx, UserLikeKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, storeErr("engagement", "UserLikeAggregate", err)
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, shared.WrapError("engagement", "UserLikeAggregate", shared.ErrIntegrityDrift,
			"aggregate counter is not an integer", err)
	}

	if count < 0 {
		s.logger.Warn("negative like aggregate clamped to 0",
			"user_id", userID, "value", count,
			"error", shared.ErrIntegrityDrift)
		return 0, nil
	}
	return count, nil
}

// validateTarget checks the (user, kind, entity) triple shared by the
// engagement operations.
func validateTarget(userID int64, kind shared.EntityKind, entityID int64) error {
	if userID <= 0 {
		return shared.NewDomainError("engagement", "Validate", shared.ErrInvalidID, "user id must be positive")
	}
	if !kind.IsValid() {
		return shared.NewDomainError("engagement", "Validate", shared.ErrInvalidArgument, "unknown entity kind")
	}
	if entityID <= 0 {
		return shared.NewDomainError("engagement", "Validate", shared.ErrInvalidID, "entity id must be positive")
	}
	return nil
}
