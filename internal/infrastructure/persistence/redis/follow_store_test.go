package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

func TestFollowStore_FollowMirrorsBothSides(t *testing.T) {
	ctx := context.Background()
	store := NewFollowStore(newTestClient(t), nil)

	at := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, store.Follow(ctx, 5, shared.KindUser, 9, at))

	following, err := store.IsFollowing(ctx, 5, shared.KindUser, 9)
	require.NoError(t, err)
	assert.True(t, following)

	followees, err := store.FolloweeCount(ctx, 5, shared.KindUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followees)

	followers, err := store.FollowerCount(ctx, shared.KindUser, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	// Both listings expose the same edge with the same timestamp.
	fe, err := store.ListFollowees(ctx, 5, shared.KindUser, 0, 10)
	require.NoError(t, err)
	require.Len(t, fe, 1)
	assert.Equal(t, int64(9), fe[0].ID)
	assert.Equal(t, at.UnixMilli(), fe[0].FollowedAt.UnixMilli())

	fr, err := store.ListFollowers(ctx, shared.KindUser, 9, 0, 10)
	require.NoError(t, err)
	require.Len(t, fr, 1)
	assert.Equal(t, int64(5), fr[0].ID)
	assert.Equal(t, at.UnixMilli(), fr[0].FollowedAt.UnixMilli())
}

func TestFollowStore_RefollowKeepsOriginalTime(t *testing.T) {
	ctx := context.Background()
	store := NewFollowStore(newTestClient(t), nil)

	first := time.UnixMilli(1_000)
	later := time.UnixMilli(9_000)
	require.NoError(t, store.Follow(ctx, 5, shared.KindPost, 42, first))
	require.NoError(t, store.Follow(ctx, 5, shared.KindPost, 42, later))

	n, err := store.FolloweeCount(ctx, 5, shared.KindPost)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	edges, err := store.ListFollowees(ctx, 5, shared.KindPost, 0, 10)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, first.UnixMilli(), edges[0].FollowedAt.UnixMilli())
}

func TestFollowStore_UnfollowRemovesBothSides(t *testing.T) {
	ctx := context.Background()
	store := NewFollowStore(newTestClient(t), nil)

	require.NoError(t, store.Follow(ctx, 5, shared.KindUser, 9, time.Now()))
	require.NoError(t, store.Unfollow(ctx, 5, shared.KindUser, 9))

	following, err := store.IsFollowing(ctx, 5, shared.KindUser, 9)
	require.NoError(t, err)
	assert.False(t, following)

	followers, err := store.FollowerCount(ctx, shared.KindUser, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(0), followers)

	// Unfollowing again stays a no-op.
	require.NoError(t, store.Unfollow(ctx, 5, shared.KindUser, 9))
}

func TestFollowStore_ListMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := NewFollowStore(newTestClient(t), nil)

	base := time.UnixMilli(1_000_000)
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, store.Follow(ctx, 7, shared.KindPost, i, base.Add(time.Duration(i)*time.Minute)))
	}

	page, err := store.ListFollowees(ctx, 7, shared.KindPost, 0, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []int64{5, 4, 3}, []int64{page[0].ID, page[1].ID, page[2].ID})

	rest, err := store.ListFollowees(ctx, 7, shared.KindPost, 3, 3)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, []int64{2, 1}, []int64{rest[0].ID, rest[1].ID})
}

func TestFollowStore_SelfFollowRejected(t *testing.T) {
	ctx := context.Background()
	store := NewFollowStore(newTestClient(t), nil)

	err := store.Follow(ctx, 5, shared.KindUser, 5, time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	// Matching ids across different kinds are fine: a user may follow the
	// post that happens to share their numeric id.
	assert.NoError(t, store.Follow(ctx, 5, shared.KindPost, 5, time.Now()))
}
