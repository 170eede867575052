// internal/domain/models/group.go
package models

import "time"

// Group is a persistent set of members that share a list of embedded events.
//
// NOTE:
//   - CreatedBy never changes. AdminID starts as CreatedBy and may only move
//     back to CreatedBy (when the admin leaves or is removed).
//   - CreatedBy and AdminID are always present in Members.
//   - Members and PendingMembers are disjoint.
//   - Version is bumped by every write and is the compare-and-swap token.
type Group struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	Icon        string `bson:"icon" json:"icon"`
	Color       string `bson:"color" json:"color"`

	CreatedBy string `bson:"created_by" json:"created_by"`
	AdminID   string `bson:"admin_id" json:"admin_id"`

	Members        []string `bson:"members" json:"members"`
	PendingMembers []string `bson:"pending_members" json:"pending_members"`

	Events []Event `bson:"events" json:"events"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	UpdatedBy string    `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// FindEvent returns the embedded event with the given id.
func (g Group) FindEvent(eventID string) (Event, bool) {
	for _, e := range g.Events {
		if e.ID == eventID {
			return e, true
		}
	}
	return Event{}, false
}

// GroupInput holds the caller-supplied fields of CreateGroup.
type GroupInput struct {
	Name        string `json:"name" validate:"required,max=100" label:"Name"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
	Icon        string `json:"icon" validate:"max=64" label:"Icon"`
	Color       string `json:"color" validate:"max=32" label:"Color"`
}

// GroupPatch carries the optional fields of an UpdateGroup call.
// Nil fields are left untouched; a non-nil empty string clears the field
// (except Name, which is required).
type GroupPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitnil,nonblank,max=100" label:"Name"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=2000" label:"Description"`
	Icon        *string `json:"icon,omitempty" validate:"omitnil,max=64" label:"Icon"`
	Color       *string `json:"color,omitempty" validate:"omitnil,max=32" label:"Color"`
}

// GroupView is a Group as seen by one user, with resolved member profiles.
type GroupView struct {
	Group
	MemberProfiles []Profile `json:"member_profiles"`
	IsAdmin        bool      `json:"is_admin"`
	IsCreator      bool      `json:"is_creator"`
}

// Invitation summarises a group a user has been invited to but not joined.
type Invitation struct {
	GroupID        string    `json:"group_id"`
	GroupName      string    `json:"group_name"`
	Description    string    `json:"description"`
	Icon           string    `json:"icon"`
	Color          string    `json:"color"`
	CreatedBy      string    `json:"created_by"`
	CreatorName    string    `json:"creator_name"`
	MemberCount    int       `json:"member_count"`
	GroupCreatedAt time.Time `json:"group_created_at"`
}
