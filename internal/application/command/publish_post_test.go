package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forum-hub/forum-engagement/internal/domain/post"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// memPosts is an in-memory post.Repository for command tests.
type memPosts struct {
	posts  map[int64]*post.Post
	nextID int64
}

func newMemPosts() *memPosts {
	return &memPosts{posts: make(map[int64]*post.Post)}
}

func (m *memPosts) ByID(_ context.Context, id int64) (*post.Post, error) {
	p, ok := m.posts[id]
	if !ok || p.Status == post.StatusRemoved {
		return nil, shared.NewDomainError("post", "ByID", shared.ErrNotFound, "post not found")
	}
	cp := *p
	return &cp, nil
}

func (m *memPosts) Insert(_ context.Context, p *post.Post) error {
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memPosts) Rows(_ context.Context, scopeUserID int64) (int64, error) {
	var n int64
	for _, p := range m.posts {
		if p.Status != post.StatusRemoved && (scopeUserID == 0 || p.UserID == scopeUserID) {
			n++
		}
	}
	return n, nil
}

func (m *memPosts) Page(context.Context, int64, int, int, post.OrderMode) ([]post.Post, error) {
	return nil, nil
}

func (m *memPosts) HotIDs(context.Context, int, int) ([]int64, error) { return nil, nil }

func (m *memPosts) UpdateStatus(_ context.Context, id int64, status post.Status) error {
	p, ok := m.posts[id]
	if !ok {
		return shared.NewDomainError("post", "UpdateStatus", shared.ErrNotFound, "post not found")
	}
	p.Status = status
	return nil
}

func (m *memPosts) UpdateType(_ context.Context, id int64, t post.Type) error {
	p, ok := m.posts[id]
	if !ok {
		return shared.NewDomainError("post", "UpdateType", shared.ErrNotFound, "post not found")
	}
	p.Type = t
	return nil
}

func (m *memPosts) UpdateScore(_ context.Context, id int64, score float64) error {
	p, ok := m.posts[id]
	if !ok {
		return shared.NewDomainError("post", "UpdateScore", shared.ErrNotFound, "post not found")
	}
	p.Score = score
	return nil
}

func TestPublishPost_EmitsPublishEvent(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	handler := NewPostLifecycleHandler(newMemPosts(), sink, nil)

	p, err := handler.Publish(ctx, PublishPostCommand{UserID: 3, Title: "hello", Content: "world"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, post.StatusNormal, p.Status)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, shared.TopicPublish, events[0].Topic)
	assert.Equal(t, int64(1), events[0].EntityID)
}

func TestDeletePost_OwnerAndModerator(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	repo := newMemPosts()
	handler := NewPostLifecycleHandler(repo, sink, nil)

	p, err := handler.Publish(ctx, PublishPostCommand{UserID: 3, Title: "mine"})
	require.NoError(t, err)

	// A stranger without takedown rights is refused.
	err = handler.Delete(ctx, DeletePostCommand{ActorID: 8, ActorRole: shared.RoleModerator, PostID: p.ID})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// The owner may remove their own post.
	require.NoError(t, handler.Delete(ctx, DeletePostCommand{ActorID: 3, ActorRole: shared.RoleUser, PostID: p.ID}))

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, shared.TopicDelete, events[1].Topic)

	// Removed posts are gone from reads.
	_, err = repo.ByID(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeletePost_AdminTakedown(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	handler := NewPostLifecycleHandler(newMemPosts(), sink, nil)

	p, err := handler.Publish(ctx, PublishPostCommand{UserID: 3, Title: "reported"})
	require.NoError(t, err)

	require.NoError(t, handler.Delete(ctx, DeletePostCommand{ActorID: 99, ActorRole: shared.RoleAdmin, PostID: p.ID}))
}

func TestModeratePost_Capabilities(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	repo := newMemPosts()
	lifecycle := NewPostLifecycleHandler(repo, sink, nil)
	moderate := NewModeratePostHandler(repo, sink, nil)

	p, err := lifecycle.Publish(ctx, PublishPostCommand{UserID: 3, Title: "notable"})
	require.NoError(t, err)

	err = moderate.Pin(ctx, ModeratePostCommand{ActorID: 8, ActorRole: shared.RoleUser, PostID: p.ID})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	require.NoError(t, moderate.Pin(ctx, ModeratePostCommand{ActorID: 8, ActorRole: shared.RoleModerator, PostID: p.ID}))
	require.NoError(t, moderate.Feature(ctx, ModeratePostCommand{ActorID: 8, ActorRole: shared.RoleModerator, PostID: p.ID}))

	got, err := repo.ByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, post.TypePinned, got.Type)
	assert.Equal(t, post.StatusFeatured, got.Status)
}
