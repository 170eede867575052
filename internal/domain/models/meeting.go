// internal/domain/models/meeting.go
package models

import "time"

// Meeting statuses.
const (
	MeetingScheduled = "scheduled"
	MeetingCancelled = "cancelled"
)

// Meeting is a top-level scheduled gathering. Unlike an Event its
// participant list can grow after creation (JoinMeeting).
//
// The AdminID entry in ParticipantStatus is always accepted.
type Meeting struct {
	ID          string `bson:"_id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Location    string `bson:"location" json:"location"`
	Date        string `bson:"date" json:"date"`
	Time        string `bson:"time" json:"time"`
	Status      string `bson:"status" json:"status"`

	CreatedBy string `bson:"created_by" json:"created_by"`
	AdminID   string `bson:"admin_id" json:"admin_id"`

	Participants      []string                       `bson:"participants" json:"participants"`
	ParticipantStatus map[string]ParticipationStatus `bson:"participant_status" json:"participant_status"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	UpdatedBy string    `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// MeetingInput holds the caller-supplied fields of CreateMeeting.
type MeetingInput struct {
	Title       string `json:"title" validate:"required,max=200" label:"Title"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
	Location    string `json:"location" validate:"required,max=200" label:"Location"`
	Date        string `json:"date" validate:"omitempty,isodate" label:"Date"`
	Time        string `json:"time" validate:"required,clock" label:"Time"`
}

// MeetingPatch carries the optional fields of an UpdateMeeting call.
type MeetingPatch struct {
	Title       *string `json:"title,omitempty" validate:"omitnil,nonblank,max=200" label:"Title"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=2000" label:"Description"`
	Location    *string `json:"location,omitempty" validate:"omitnil,nonblank,max=200" label:"Location"`
	Date        *string `json:"date,omitempty" validate:"omitnil,isodate" label:"Date"`
	Time        *string `json:"time,omitempty" validate:"omitnil,clock" label:"Time"`
	Status      *string `json:"status,omitempty" validate:"omitnil,oneof=scheduled cancelled" label:"Status"`
}

// CountByStatus tallies the meeting's RSVPs.
func (m Meeting) CountByStatus() StatusCounts {
	return CountByStatus(m.Participants, m.ParticipantStatus)
}

// MeetingView is a Meeting with resolved participant profiles and its tally.
type MeetingView struct {
	Meeting
	ParticipantProfiles []Profile    `json:"participant_profiles"`
	Counts              StatusCounts `json:"counts"`
	IsAdmin             bool         `json:"is_admin"`
}
