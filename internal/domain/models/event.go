// internal/domain/models/event.go
package models

import "time"

// Event is a scheduled gathering embedded in a Group's events list.
//
// Participants is a snapshot of the group's members taken when the event was
// created; it does not grow when the group gains members later.
type Event struct {
	ID          string `bson:"id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Location    string `bson:"location" json:"location"`
	Date        string `bson:"date" json:"date"` // YYYY-MM-DD
	Time        string `bson:"time" json:"time"` // HH:MM, 24-hour

	CreatedBy string    `bson:"created_by" json:"created_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	Participants      []string                       `bson:"participants" json:"participants"`
	ParticipantStatus map[string]ParticipationStatus `bson:"participant_status" json:"participant_status"`

	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	UpdatedBy string     `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// EventInput holds the caller-supplied fields of CreateEvent.
type EventInput struct {
	Title       string `json:"title" validate:"required,max=200" label:"Title"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
	Location    string `json:"location" validate:"required,max=200" label:"Location"`
	Date        string `json:"date" validate:"omitempty,isodate" label:"Date"`
	Time        string `json:"time" validate:"required,clock" label:"Time"`
}

// EventPatch carries the optional fields of an UpdateEvent call.
type EventPatch struct {
	Title       *string `json:"title,omitempty" validate:"omitnil,nonblank,max=200" label:"Title"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=2000" label:"Description"`
	Location    *string `json:"location,omitempty" validate:"omitnil,nonblank,max=200" label:"Location"`
	Date        *string `json:"date,omitempty" validate:"omitnil,isodate" label:"Date"`
	Time        *string `json:"time,omitempty" validate:"omitnil,clock" label:"Time"`
}

// CountByStatus tallies the event's RSVPs.
func (e Event) CountByStatus() StatusCounts {
	return CountByStatus(e.Participants, e.ParticipantStatus)
}

// EventView pairs an event with its RSVP tally.
type EventView struct {
	Event
	Counts StatusCounts `json:"counts"`
}
