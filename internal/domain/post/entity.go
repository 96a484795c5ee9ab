// Package post contains the discussion post entity and its persistent-store
// port. Posts live in the relational store; the hot-list cache in front of it
// is a pure performance layer and never authoritative.
package post

import "time"

// Type is the pinning level of a post.
type Type int

const (
	// TypeNormal is a regular post.
	TypeNormal Type = 0

	// TypePinned posts sort above everything else.
	TypePinned Type = 1
)

// Status is the moderation status of a post.
type Status int

const (
	// StatusNormal is a visible post.
	StatusNormal Status = 0

	// StatusFeatured is highlighted by a moderator.
	StatusFeatured Status = 1

	// StatusRemoved is soft-deleted and excluded from all listings.
	StatusRemoved Status = 2
)

// OrderMode selects the listing order.
type OrderMode int

const (
	// OrderLatest sorts by creation time, newest first.
	OrderLatest OrderMode = 0

	// OrderHot sorts by ranking score. Only the global hot view is cached.
	OrderHot OrderMode = 1
)

// Post is a discussion post row.
type Post struct {
	ID           int64
	UserID       int64
	Title        string
	Content      string
	Type         Type
	Status       Status
	CommentCount int64
	Score        float64
	CreatedAt    time.Time
}
