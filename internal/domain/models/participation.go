package models

// ParticipationStatus is a participant's RSVP on an Event or Meeting.
type ParticipationStatus string

const (
	StatusPending  ParticipationStatus = "pending"
	StatusAccepted ParticipationStatus = "accepted"
	StatusDeclined ParticipationStatus = "declined"
)

// Valid reports whether s is one of the three known statuses.
func (s ParticipationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// StatusCounts is the per-status tally of an RSVP map.
type StatusCounts struct {
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
	Pending  int `json:"pending"`
}

// CountByStatus tallies statuses over participants. A participant without an
// explicit (or with an unrecognised) entry counts as pending.
func CountByStatus(participants []string, status map[string]ParticipationStatus) StatusCounts {
	var c StatusCounts
	for _, id := range participants {
		switch status[id] {
		case StatusAccepted:
			c.Accepted++
		case StatusDeclined:
			c.Declined++
		default:
			c.Pending++
		}
	}
	return c
}

// SeedStatus builds the initial RSVP map: accepted for the creator,
// pending for everyone else.
func SeedStatus(participants []string, creatorID string) map[string]ParticipationStatus {
	m := make(map[string]ParticipationStatus, len(participants))
	for _, id := range participants {
		m[id] = StatusPending
	}
	m[creatorID] = StatusAccepted
	return m
}
