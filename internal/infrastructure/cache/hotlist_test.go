package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

func newSharedTierClient(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// countingSource counts upstream loads and can simulate a slow store.
type countingSource struct {
	rowsCalls int64
	idsCalls  int64
	delay     time.Duration
	rows      int64
	ids       []int64
}

func (s *countingSource) Rows(_ context.Context, scopeUserID int64) (int64, error) {
	atomic.AddInt64(&s.rowsCalls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if scopeUserID != 0 {
		return 1, nil
	}
	return s.rows, nil
}

func (s *countingSource) HotIDs(_ context.Context, offset, limit int) ([]int64, error) {
	atomic.AddInt64(&s.idsCalls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if offset >= len(s.ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.ids) {
		end = len(s.ids)
	}
	return s.ids[offset:end], nil
}

func TestHotListCache_CachesGlobalCount(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{rows: 12}
	c := New(src, Config{MaxEntries: 4, TTL: time.Minute}, nil)

	for i := 0; i < 5; i++ {
		n, err := c.TotalPostCount(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(12), n)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&src.rowsCalls))
}

func TestHotListCache_ScopedCountBypassesCache(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{rows: 12}
	c := New(src, Config{MaxEntries: 4, TTL: time.Minute}, nil)

	for i := 0; i < 3; i++ {
		n, err := c.TotalPostCount(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	}
	assert.Equal(t, int64(3), atomic.LoadInt64(&src.rowsCalls))
}

func TestHotListCache_CachesHotPages(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{ids: []int64{10, 9, 8, 7, 6}}
	c := New(src, Config{MaxEntries: 4, TTL: time.Minute}, nil)

	first, err := c.HotPostPage(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 9, 8}, first)

	again, err := c.HotPostPage(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, int64(1), atomic.LoadInt64(&src.idsCalls))

	// A different page is its own entry.
	second, err := c.HotPostPage(ctx, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 6}, second)
	assert.Equal(t, int64(2), atomic.LoadInt64(&src.idsCalls))
}

func TestHotListCache_SingleFlight(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{ids: []int64{10, 9, 8}, delay: 20 * time.Millisecond}
	c := New(src, Config{MaxEntries: 4, TTL: time.Minute}, nil)

	const concurrent = 16
	var wg sync.WaitGroup
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := c.HotPostPage(ctx, 0, 3)
			assert.NoError(t, err)
			assert.Equal(t, []int64{10, 9, 8}, ids)
		}()
	}
	wg.Wait()

	// All concurrent misses collapse into one upstream load.
	assert.Equal(t, int64(1), atomic.LoadInt64(&src.idsCalls))
}

func TestHotListCache_Validation(t *testing.T) {
	ctx := context.Background()
	c := New(&countingSource{}, Config{}, nil)

	_, err := c.TotalPostCount(ctx, -1)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = c.HotPostPage(ctx, -1, 10)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = c.HotPostPage(ctx, 0, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestHotListCache_SharedTier(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{rows: 42, ids: []int64{3, 2, 1}}

	client := newSharedTierClient(t)
	c := New(src, Config{MaxEntries: 4, TTL: time.Minute}, nil).WithSharedTier(client)

	n, err := c.TotalPostCount(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	ids, err := c.HotPostPage(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids)

	// A fresh process tier finds both entries in the shared tier.
	c2 := New(src, Config{MaxEntries: 4, TTL: time.Minute}, nil).WithSharedTier(client)

	n, err = c2.TotalPostCount(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	ids, err = c2.HotPostPage(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids)

	assert.Equal(t, int64(1), atomic.LoadInt64(&src.rowsCalls))
	assert.Equal(t, int64(1), atomic.LoadInt64(&src.idsCalls))
}
