package command

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
	"github.com/forum-hub/forum-engagement/internal/infrastructure/persistence/redis"
)

// recordingSink collects published events.
type recordingSink struct {
	mu     sync.Mutex
	events []shared.Event
}

func (s *recordingSink) Publish(ev shared.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) all() []shared.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shared.Event, len(s.events))
	copy(out, s.events)
	return out
}

func newLikeStore(t *testing.T) *redis.EngagementStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewEngagementStore(client, nil)
}

func TestToggleLike_LikePublishesEvent(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	handler := NewToggleLikeHandler(newLikeStore(t), sink, nil)

	cmd := ToggleLikeCommand{
		UserID:     7,
		EntityKind: shared.KindPost,
		EntityID:   42,
		AuthorID:   3,
		PostID:     42,
	}

	res, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikeCount)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, shared.TopicLike, events[0].Topic)
	assert.Equal(t, int64(7), events[0].ActorID)
	assert.Equal(t, shared.KindPost, events[0].EntityKind)
	assert.Equal(t, int64(42), events[0].EntityID)
	assert.Equal(t, int64(3), events[0].AuthorID)
	assert.Equal(t, "42", events[0].Data["post_id"])
}

func TestToggleLike_UnlikeIsSilent(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	handler := NewToggleLikeHandler(newLikeStore(t), sink, nil)

	cmd := ToggleLikeCommand{UserID: 7, EntityKind: shared.KindPost, EntityID: 42, AuthorID: 3, PostID: 42}

	_, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)

	res, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, int64(0), res.LikeCount)

	// Only the initial like produced an event.
	assert.Len(t, sink.all(), 1)
}

func TestToggleLike_Validation(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	handler := NewToggleLikeHandler(newLikeStore(t), sink, nil)

	_, err := handler.Handle(ctx, ToggleLikeCommand{UserID: 0, EntityKind: shared.KindPost, EntityID: 42, AuthorID: 3})
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = handler.Handle(ctx, ToggleLikeCommand{UserID: 7, EntityKind: shared.KindUser, EntityID: 42, AuthorID: 3})
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	assert.Empty(t, sink.all())
}
