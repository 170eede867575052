package meetingpolicy

import (
	"slices"

	"github.com/dalemusser/gatherhub/internal/domain/models"
)

// IsParticipant reports whether userID is on the meeting's participant list.
func IsParticipant(m models.Meeting, userID string) bool {
	return userID != "" && slices.Contains(m.Participants, userID)
}

// IsAdmin reports whether userID is the meeting admin.
func IsAdmin(m models.Meeting, userID string) bool {
	return userID != "" && m.AdminID == userID
}

// IsCreator reports whether userID created the meeting.
func IsCreator(m models.Meeting, userID string) bool {
	return userID != "" && m.CreatedBy == userID
}

// CanManageMeeting reports whether userID may update or delete the meeting.
func CanManageMeeting(m models.Meeting, userID string) bool {
	return IsAdmin(m, userID) || IsCreator(m, userID)
}
