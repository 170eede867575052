package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/gatherhub/internal/app/store/audit"
	"github.com/dalemusser/gatherhub/internal/app/store/docstore"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/google/uuid"
)

// NewMemoryStore returns an empty in-memory document store.
func NewMemoryStore() *docstore.Memory {
	return docstore.NewMemory()
}

// Fixtures provides helper methods for creating test data directly in a
// document store, bypassing repository validation.
type Fixtures struct {
	store docstore.Store
	t     *testing.T
}

// NewFixtures creates a new Fixtures instance for the given store.
func NewFixtures(t *testing.T, store docstore.Store) *Fixtures {
	t.Helper()
	return &Fixtures{store: store, t: t}
}

// Store returns the underlying document store.
func (f *Fixtures) Store() docstore.Store {
	return f.store
}

// CreateUser inserts a user record and returns it.
func (f *Fixtures) CreateUser(ctx context.Context, displayName string) models.User {
	f.t.Helper()

	u := models.User{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		AvatarURL:   "https://avatars.test/" + displayName + ".png",
		Version:     1,
		CreatedAt:   time.Now().UTC(),
	}
	if err := f.store.Insert(ctx, "users", u.ID, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateGroup inserts a group owned by creatorID with the given extra
// members and pending invitees.
func (f *Fixtures) CreateGroup(ctx context.Context, name, creatorID string, members, pending []string) models.Group {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	g := models.Group{
		ID:             uuid.NewString(),
		Name:           name,
		CreatedBy:      creatorID,
		AdminID:        creatorID,
		Members:        append([]string{creatorID}, members...),
		PendingMembers: append([]string{}, pending...),
		Events:         []models.Event{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
		UpdatedBy:      creatorID,
	}
	if err := f.store.Insert(ctx, "groups", g.ID, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// InsertGroup stores g as given, filling in an id, version, timestamps and
// empty slices when they are missing. Use it for states the repository
// cannot produce directly, such as an admin who is not the creator.
func (f *Fixtures) InsertGroup(ctx context.Context, g models.Group) models.Group {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.AdminID == "" {
		g.AdminID = g.CreatedBy
	}
	if g.Members == nil {
		g.Members = []string{g.CreatedBy}
	}
	if g.PendingMembers == nil {
		g.PendingMembers = []string{}
	}
	if g.Events == nil {
		g.Events = []models.Event{}
	}
	if g.Version == 0 {
		g.Version = 1
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
		g.UpdatedAt = now
	}
	if err := f.store.Insert(ctx, "groups", g.ID, g); err != nil {
		f.t.Fatalf("failed to insert test group: %v", err)
	}
	return g
}

// CreateMeeting inserts a scheduled meeting administered by creatorID with
// the given invitees pending.
func (f *Fixtures) CreateMeeting(ctx context.Context, title, creatorID string, invitees []string) models.Meeting {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	participants := append([]string{creatorID}, invitees...)
	m := models.Meeting{
		ID:                uuid.NewString(),
		Title:             title,
		Location:          "Room 1",
		Time:              "10:00",
		Status:            models.MeetingScheduled,
		CreatedBy:         creatorID,
		AdminID:           creatorID,
		Participants:      participants,
		ParticipantStatus: models.SeedStatus(participants, creatorID),
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
		UpdatedBy:         creatorID,
	}
	if err := f.store.Insert(ctx, "meetings", m.ID, m); err != nil {
		f.t.Fatalf("failed to create test meeting: %v", err)
	}
	return m
}

// AuditEvents returns the audit events recorded against targetID, newest
// first.
func (f *Fixtures) AuditEvents(ctx context.Context, targetID string) []audit.Event {
	f.t.Helper()
	var out []audit.Event
	if err := f.store.FindContains(ctx, audit.Collection, "target_id", targetID, &out,
		docstore.SortBy("timestamp", true)); err != nil {
		f.t.Fatalf("read audit events for %s: %v", targetID, err)
	}
	return out
}
