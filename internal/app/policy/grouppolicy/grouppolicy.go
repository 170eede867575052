// internal/app/policy/grouppolicy.go
package grouppolicy

import (
	"slices"

	"github.com/dalemusser/gatherhub/internal/domain/models"
)

// The checks below run against the group document read in the same
// optimistic cycle as the write they guard, never against a cached copy.

// IsMember reports whether userID is in g.Members.
func IsMember(g models.Group, userID string) bool {
	return userID != "" && slices.Contains(g.Members, userID)
}

// IsPending reports whether userID has an open invitation to g.
func IsPending(g models.Group, userID string) bool {
	return userID != "" && slices.Contains(g.PendingMembers, userID)
}

// IsAdmin reports whether userID is the group's current admin.
func IsAdmin(g models.Group, userID string) bool {
	return userID != "" && g.AdminID == userID
}

// IsCreator reports whether userID created the group.
func IsCreator(g models.Group, userID string) bool {
	return userID != "" && g.CreatedBy == userID
}

// CanManageGroup reports whether userID may update or delete the group and
// remove its members: the admin or the creator.
func CanManageGroup(g models.Group, userID string) bool {
	return IsAdmin(g, userID) || IsCreator(g, userID)
}

// CanInvite reports whether userID may invite others. Any member can.
func CanInvite(g models.Group, userID string) bool {
	return IsMember(g, userID)
}

// CanManageEvent reports whether userID may update or delete e: the event's
// creator, the group admin or the group creator.
func CanManageEvent(g models.Group, e models.Event, userID string) bool {
	return (userID != "" && e.CreatedBy == userID) || CanManageGroup(g, userID)
}
