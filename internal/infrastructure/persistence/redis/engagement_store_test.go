package redis

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestEngagementStore_ToggleLike(t *testing.T) {
	ctx := context.Background()
	store := NewEngagementStore(newTestClient(t), nil)

	liked, err := store.ToggleLike(ctx, 7, shared.KindPost, 42, 3)
	require.NoError(t, err)
	assert.True(t, liked)

	count, err := store.LikeCount(ctx, shared.KindPost, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	status, err := store.LikeStatus(ctx, 7, shared.KindPost, 42)
	require.NoError(t, err)
	assert.True(t, status)

	agg, err := store.UserLikeAggregate(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg)

	// Second toggle undoes everything.
	liked, err = store.ToggleLike(ctx, 7, shared.KindPost, 42, 3)
	require.NoError(t, err)
	assert.False(t, liked)

	count, err = store.LikeCount(ctx, shared.KindPost, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	status, err = store.LikeStatus(ctx, 7, shared.KindPost, 42)
	require.NoError(t, err)
	assert.False(t, status)

	agg, err = store.UserLikeAggregate(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg)
}

func TestEngagementStore_ToggleLike_DistinctUsers(t *testing.T) {
	ctx := context.Background()
	store := NewEngagementStore(newTestClient(t), nil)

	for userID := int64(1); userID <= 5; userID++ {
		liked, err := store.ToggleLike(ctx, userID, shared.KindComment, 9, 2)
		require.NoError(t, err)
		assert.True(t, liked)
	}

	count, err := store.LikeCount(ctx, shared.KindComment, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	agg, err := store.UserLikeAggregate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), agg)
}

func TestEngagementStore_ToggleLike_ConcurrentSameUser(t *testing.T) {
	ctx := context.Background()
	store := NewEngagementStore(newTestClient(t), nil)

	// An odd number of toggles must land on liked regardless of interleaving.
	const toggles = 7

	var wg sync.WaitGroup
	errs := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ToggleLike(ctx, 7, shared.KindPost, 42, 3)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var contended int
	for err := range errs {
		if err != nil {
			// Exhausted optimistic retries count as not-executed toggles.
			require.ErrorIs(t, err, shared.ErrTxConflict)
			contended++
		}
	}

	executed := toggles - contended
	count, err := store.LikeCount(ctx, shared.KindPost, 42)
	require.NoError(t, err)

	status, err := store.LikeStatus(ctx, 7, shared.KindPost, 42)
	require.NoError(t, err)

	if executed%2 == 1 {
		assert.Equal(t, int64(1), count)
		assert.True(t, status)
	} else {
		assert.Equal(t, int64(0), count)
		assert.False(t, status)
	}

	// The aggregate always mirrors the set cardinality.
	agg, err := store.UserLikeAggregate(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, count, agg)
}

func TestEngagementStore_UserLikeAggregate_Missing(t *testing.T) {
	ctx := context.Background()
	store := NewEngagementStore(newTestClient(t), nil)

	agg, err := store.UserLikeAggregate(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg)
}

func TestEngagementStore_UserLikeAggregate_NegativeClamped(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	store := NewEngagementStore(client, nil)

	require.NoError(t, client.Set(ctx, UserLikeKey(5), -3, 0).Err())

	agg, err := store.UserLikeAggregate(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg)
}

func TestEngagementStore_Validation(t *testing.T) {
	ctx := context.Background()
	store := NewEngagementStore(newTestClient(t), nil)

	_, err := store.ToggleLike(ctx, 0, shared.KindPost, 42, 3)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = store.ToggleLike(ctx, 7, shared.EntityKind(99), 42, 3)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = store.ToggleLike(ctx, 7, shared.KindPost, 42, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = store.LikeCount(ctx, shared.KindPost, -1)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = store.UserLikeAggregate(ctx, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
