// Package notification contains the message and notice ledger: 1:1 private
// conversations plus topic-scoped system notices, with read-state tracking.
package notification

import (
	"fmt"
	"time"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// SystemUserID is the reserved sender id for system notices. Messages from
// this id are notices, never private letters.
const SystemUserID int64 = 1

// ReadState is the lifecycle state of a message.
type ReadState int

const (
	// StateUnread - delivered, not yet seen.
	StateUnread ReadState = 0

	// StateRead - seen by the recipient.
	StateRead ReadState = 1

	// StateDeleted - soft tombstone, owned by the presentation layer.
	StateDeleted ReadState = 2
)

// IsValid checks the read state value.
func (s ReadState) IsValid() bool {
	return s == StateUnread || s == StateRead || s == StateDeleted
}

// Message is a private letter between two users, or a system notice when
// FromID equals SystemUserID. Content is written once at creation and never
// mutated; only the read state transitions afterwards, in bulk.
type Message struct {
	// ID is the store-assigned monotonic id.
	ID int64

	// FromID is the sender, or SystemUserID for notices.
	FromID int64

	// ToID is the recipient.
	ToID int64

	// ConversationID groups the message: "<min>_<max>" of the two user ids
	// for letters, the topic name for notices.
	ConversationID string

	// Content is the letter body, or the serialized notice payload.
	Content string

	// Status is the read state.
	Status ReadState

	// CreatedAt is when the message was created.
	CreatedAt time.Time
}

// IsNotice reports whether the message is a system notice.
func (m Message) IsNotice() bool {
	return m.FromID == SystemUserID
}

// ConversationID derives the deterministic conversation id for a user pair.
// Both participants compute the same id because the smaller id goes first.
func ConversationID(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

// NoticeConversationID returns the conversation id that groups system notices
// for a topic.
func NoticeConversationID(topic shared.Topic) string {
	return string(topic)
}
