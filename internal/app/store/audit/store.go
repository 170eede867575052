// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/gatherhub/internal/app/store/docstore"
	"github.com/google/uuid"
)

// Collection holds audit events.
const Collection = "audit_events"

// Event categories
const (
	CategoryGroup   = "group"
	CategoryMeeting = "meeting"
)

// Group event types
const (
	EventGroupCreated       = "group_created"
	EventGroupUpdated       = "group_updated"
	EventGroupDeleted       = "group_deleted"
	EventMemberInvited      = "member_invited"
	EventInvitationAccepted = "invitation_accepted"
	EventInvitationRejected = "invitation_rejected"
	EventMemberLeft         = "member_left"
	EventMemberRemoved      = "member_removed"
	EventEventCreated       = "event_created"
	EventEventUpdated       = "event_updated"
	EventEventDeleted       = "event_deleted"
	EventEventRSVP          = "event_rsvp"
)

// Meeting event types
const (
	EventMeetingCreated = "meeting_created"
	EventMeetingUpdated = "meeting_updated"
	EventMeetingDeleted = "meeting_deleted"
	EventMeetingJoined  = "meeting_joined"
	EventMeetingRSVP    = "meeting_rsvp"
)

// Event represents an audit event.
type Event struct {
	ID        string    `bson:"_id"`
	Timestamp time.Time `bson:"timestamp"`

	// Event classification
	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who and what
	ActorID   string `bson:"actor_id"`             // who performed the action
	TargetID  string `bson:"target_id"`            // group or meeting id
	SubjectID string `bson:"subject_id,omitempty"` // affected user, when not the actor

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty"`

	Version int64 `bson:"version"`
}

// Store manages audit event records.
type Store struct {
	ds docstore.Store
}

// New creates a new audit Store.
func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Version = 1
	return s.ds.Insert(ctx, Collection, event.ID, event)
}
