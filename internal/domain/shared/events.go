// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Topic identifies the broker topic a domain event is published on.
type Topic string

// Domain event topics. Each topic has its own stream on the broker; the
// notification materializer consumes like/follow/comment, the search-index
// updater consumes publish/delete.
const (
	// TopicLike - someone liked a post or comment.
	TopicLike Topic = "like"

	// TopicFollow - someone followed an entity.
	TopicFollow Topic = "follow"

	// TopicComment - someone commented on a post or replied to a comment.
	TopicComment Topic = "comment"

	// TopicPublish - a post was published and must be indexed.
	TopicPublish Topic = "publish"

	// TopicDelete - a post was removed and must leave the index.
	TopicDelete Topic = "delete"
)

// Topics lists every event topic.
func Topics() []Topic {
	return []Topic{TopicLike, TopicFollow, TopicComment, TopicPublish, TopicDelete}
}

// IsValid checks if the topic is a known event topic.
func (t Topic) IsValid() bool {
	switch t {
	case TopicLike, TopicFollow, TopicComment, TopicPublish, TopicDelete:
		return true
	}
	return false
}

// NotifiesUser reports whether events on this topic materialize a user-facing
// system notice (as opposed to feeding the search index).
func (t Topic) NotifiesUser() bool {
	switch t {
	case TopicLike, TopicFollow, TopicComment:
		return true
	}
	return false
}

// Event is a domain event published on the broker. Delivery is at-least-once;
// consumers must dedupe on DedupKey().
type Event struct {
	// ID is a unique event identifier.
	ID string `json:"id"`

	// Topic is the broker topic this event belongs to.
	Topic Topic `json:"topic"`

	// ActorID is the user who performed the action.
	ActorID int64 `json:"actor_id"`

	// EntityKind is the kind of entity the action targeted.
	EntityKind EntityKind `json:"entity_kind"`

	// EntityID is the id of the targeted entity.
	EntityID int64 `json:"entity_id"`

	// AuthorID is the secondary actor: the author of the targeted content,
	// i.e. the user who receives the notification. Zero when not applicable.
	AuthorID int64 `json:"author_id,omitempty"`

	// Data carries free-form extension fields, e.g. the post id a comment
	// belongs to so the notification can deep-link to it.
	Data map[string]string `json:"data,omitempty"`

	// CreatedAt is when the event occurred.
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent creates an event with a fresh id and the current time.
func NewEvent(topic Topic, actorID int64, kind EntityKind, entityID, authorID int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		ActorID:    actorID,
		EntityKind: kind,
		EntityID:   entityID,
		AuthorID:   authorID,
		CreatedAt:  time.Now().UTC(),
	}
}

// WithData attaches an extension field and returns the event.
func (e Event) WithData(key, value string) Event {
	if e.Data == nil {
		e.Data = make(map[string]string, 2)
	}
	e.Data[key] = value
	return e
}

// DedupKey identifies a logical event across redeliveries. Consumers treat a
// second delivery with the same key as a duplicate and skip it.
func (e Event) DedupKey() string {
	return fmt.Sprintf("%s:%d:%d:%d:%d", e.Topic, e.EntityKind, e.EntityID, e.ActorID, e.CreatedAt.UnixNano())
}

// EventSink accepts events for asynchronous publication. Publish never blocks
// and never fails from the caller's perspective; delivery is best-effort.
type EventSink interface {
	Publish(event Event)
}
