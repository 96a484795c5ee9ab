// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import "strconv"

// ═══════════════════════════════════════════════════════════════════════════
// Entity Kinds
// ═══════════════════════════════════════════════════════════════════════════

// EntityKind identifies the kind of content an engagement action targets.
// The numeric values are part of the key-value store's key format and must
// stay stable.
type EntityKind int

const (
	// KindPost is a discussion post.
	KindPost EntityKind = 1

	// KindComment is a comment or reply.
	KindComment EntityKind = 2

	// KindUser is a user profile.
	KindUser EntityKind = 3
)

// IsValid checks if the kind is a known entity kind.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindPost, KindComment, KindUser:
		return true
	}
	return false
}

// String returns the numeric wire representation used in store keys.
func (k EntityKind) String() string {
	return strconv.Itoa(int(k))
}

// Name returns a human-readable name for logging.
func (k EntityKind) Name() string {
	switch k {
	case KindPost:
		return "post"
	case KindComment:
		return "comment"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Roles
// ═══════════════════════════════════════════════════════════════════════════

// Role is a plain tagged enumeration of user authority levels.
type Role int

const (
	// RoleUser is a regular forum member.
	RoleUser Role = 0

	// RoleModerator can feature and pin posts.
	RoleModerator Role = 1

	// RoleAdmin can additionally remove posts.
	RoleAdmin Role = 2
)

// Capability names an action a role is allowed to perform.
type Capability string

const (
	CapabilityPost     Capability = "post"
	CapabilityComment  Capability = "comment"
	CapabilityLike     Capability = "like"
	CapabilityFollow   Capability = "follow"
	CapabilityPin      Capability = "pin"
	CapabilityFeature  Capability = "feature"
	CapabilityTakedown Capability = "takedown"
)

// Capabilities maps a role to its capability set. Pure function, no lookups.
func Capabilities(r Role) []Capability {
	base := []Capability{CapabilityPost, CapabilityComment, CapabilityLike, CapabilityFollow}
	switch r {
	case RoleModerator:
		return append(base, CapabilityPin, CapabilityFeature)
	case RoleAdmin:
		return append(base, CapabilityPin, CapabilityFeature, CapabilityTakedown)
	default:
		return base
	}
}

// HasCapability reports whether the role may perform the action.
func HasCapability(r Role, c Capability) bool {
	for _, got := range Capabilities(r) {
		if got == c {
			return true
		}
	}
	return false
}
