// internal/domain/models/user.go
package models

import "time"

// User is the minimal account record the engine reads for display purposes.
// Identity and sign-in live elsewhere; the engine only ever sees the id.
type User struct {
	ID          string    `bson:"_id" json:"id"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	AvatarURL   string    `bson:"avatar_url" json:"avatar_url"`
	Version     int64     `bson:"version" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Profile is the display data attached to a user id when rendering
// members and participants. It is never authoritative.
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// UnknownProfile is returned for ids with no user record.
func UnknownProfile(userID string) Profile {
	return Profile{UserID: userID, DisplayName: "Unknown user"}
}
