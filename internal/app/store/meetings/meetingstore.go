// internal/app/store/meetings/meetingstore.go
package meetingstore

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dalemusser/gatherhub/internal/app/policy/meetingpolicy"
	"github.com/dalemusser/gatherhub/internal/app/store/docstore"
	userstore "github.com/dalemusser/gatherhub/internal/app/store/users"
	"github.com/dalemusser/gatherhub/internal/app/system/apperr"
	"github.com/dalemusser/gatherhub/internal/app/system/auditlog"
	"github.com/dalemusser/gatherhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/app/system/timeouts"
	"github.com/dalemusser/gatherhub/internal/app/system/txn"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const Collection = "meetings"

// Options configures a Store. Zero values are usable.
type Options struct {
	Profiles        userstore.Resolver
	Audit           *auditlog.Logger
	Logger          *zap.Logger
	ConflictRetries int
}

// Store is the meeting repository.
//
// Unlike group events, a meeting's participant list grows through
// JoinMeeting. The admin's own RSVP stays accepted.
type Store struct {
	ds       docstore.Store
	profiles userstore.Resolver
	audit    *auditlog.Logger
	log      *zap.Logger
	attempts int
	now      func() time.Time
}

func New(ds docstore.Store, opts Options) *Store {
	s := &Store{
		ds:       ds,
		profiles: opts.Profiles,
		audit:    opts.Audit,
		log:      opts.Logger,
		attempts: opts.ConflictRetries,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	if s.profiles == nil {
		s.profiles = userstore.New(ds)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.attempts < 1 {
		s.attempts = txn.DefaultAttempts
	}
	return s
}

// CreateMeeting stores a scheduled meeting. The creator is admin and starts
// accepted; every invitee starts pending. At least one invitee other than
// the creator is required.
func (s *Store) CreateMeeting(ctx context.Context, in models.MeetingInput, invitedIDs []string, creatorID string) (models.Meeting, error) {
	const op = "CreateMeeting"
	if !inputval.IsValidUserID(creatorID) {
		return models.Meeting{}, apperr.New(apperr.KindValidation, op, "invalid creator id")
	}

	in.Title = htmlsanitize.PlainText(in.Title)
	in.Location = htmlsanitize.PlainText(in.Location)
	in.Description = htmlsanitize.Sanitize(in.Description)
	if res := inputval.Validate(in); res.HasErrors() {
		return models.Meeting{}, apperr.New(apperr.KindValidation, op, res.First())
	}

	participants := []string{creatorID}
	for _, id := range invitedIDs {
		if !inputval.IsValidUserID(id) {
			return models.Meeting{}, apperr.Newf(apperr.KindValidation, op, "invalid invitee id %q", id)
		}
		if !slices.Contains(participants, id) {
			participants = append(participants, id)
		}
	}
	if len(participants) < 2 {
		return models.Meeting{}, apperr.New(apperr.KindValidation, op, "Invite at least one other person.")
	}

	now := s.now()
	m := models.Meeting{
		ID:                primitive.NewObjectID().Hex(),
		Title:             in.Title,
		Description:       in.Description,
		Location:          in.Location,
		Date:              in.Date,
		Time:              in.Time,
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

	ictx, cancel := timeouts.Bound(ctx, timeouts.Short())
	defer cancel()
	if err := s.ds.Insert(ictx, Collection, m.ID, m); err != nil {
		return models.Meeting{}, txn.StoreError(op, err)
	}

	s.audit.MeetingCreated(ctx, creatorID, m)
	return m, nil
}

// GetMeeting returns the meeting with profiles and tally. Participants only.
func (s *Store) GetMeeting(ctx context.Context, meetingID, userID string) (models.MeetingView, error) {
	const op = "GetMeeting"
	m, err := s.load(ctx, op, meetingID)
	if err != nil {
		return models.MeetingView{}, txn.StoreError(op, err)
	}
	if !meetingpolicy.IsParticipant(m, userID) {
		return models.MeetingView{}, s.reject(op, apperr.KindForbidden, "only participants can view this meeting",
			zap.String("meeting_id", meetingID), zap.String("user_id", userID))
	}
	v, err := s.view(ctx, m, userID)
	if err != nil {
		return models.MeetingView{}, txn.StoreError(op, err)
	}
	return v, nil
}

// FetchUserMeetings lists the meetings userID participates in, newest first.
func (s *Store) FetchUserMeetings(ctx context.Context, userID string) ([]models.MeetingView, error) {
	const op = "FetchUserMeetings"
	if !inputval.IsValidUserID(userID) {
		return nil, apperr.New(apperr.KindValidation, op, "invalid user id")
	}

	fctx, cancel := timeouts.Bound(ctx, timeouts.Short())
	defer cancel()
	var meetings []models.Meeting
	if err := s.ds.FindContains(fctx, Collection, "participants", userID, &meetings, docstore.SortBy("created_at", true)); err != nil {
		return nil, txn.StoreError(op, err)
	}

	out := make([]models.MeetingView, 0, len(meetings))
	for _, m := range meetings {
		v, err := s.view(ctx, m, userID)
		if err != nil {
			return nil, txn.StoreError(op, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// JoinMeeting adds userID as an accepted participant. Joining a meeting you
// already participate in changes nothing.
func (s *Store) JoinMeeting(ctx context.Context, meetingID, userID string) (models.Meeting, error) {
	const op = "JoinMeeting"
	if !inputval.IsValidUserID(userID) {
		return models.Meeting{}, apperr.New(apperr.KindValidation, op, "invalid user id")
	}

	var (
		out    models.Meeting
		joined bool
	)
	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		m, err := s.load(ctx, op, meetingID)
		if err != nil {
			return err
		}
		if meetingpolicy.IsParticipant(m, userID) {
			out, joined = m, false
			return nil
		}

		now := s.now()
		if err := s.write(ctx, m, docstore.Update{
			Set: []docstore.Field{
				docstore.F("participant_status."+userID, models.StatusAccepted),
				docstore.F("updated_at", now),
				docstore.F("updated_by", userID),
			},
			AddToSet: []docstore.Field{docstore.F("participants", userID)},
		}); err != nil {
			return err
		}

		m.Participants = append(slices.Clone(m.Participants), userID)
		status := make(map[string]models.ParticipationStatus, len(m.ParticipantStatus)+1)
		for k, v := range m.ParticipantStatus {
			status[k] = v
		}
		status[userID] = models.StatusAccepted
		m.ParticipantStatus = status
		m.UpdatedAt, m.UpdatedBy = now, userID
		m.Version++
		out, joined = m, true
		return nil
	})
	if err != nil {
		return models.Meeting{}, err
	}

	if joined {
		s.audit.MeetingJoined(ctx, userID, meetingID)
	}
	return out, nil
}

// RespondToMeeting records userID's RSVP. The admin is always accepted.
func (s *Store) RespondToMeeting(ctx context.Context, meetingID, userID string, status models.ParticipationStatus) error {
	const op = "RespondToMeeting"
	if !status.Valid() {
		return apperr.Newf(apperr.KindValidation, op, "status must be pending, accepted or declined, got %q", status)
	}
	if !inputval.IsValidUserID(userID) {
		return apperr.New(apperr.KindValidation, op, "invalid user id")
	}

	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		m, err := s.load(ctx, op, meetingID)
		if err != nil {
			return err
		}
		fields := []zap.Field{zap.String("meeting_id", meetingID), zap.String("user_id", userID)}
		switch {
		case !meetingpolicy.IsParticipant(m, userID):
			return s.reject(op, apperr.KindNotInvited, "you were not invited to this meeting", fields...)
		case meetingpolicy.IsAdmin(m, userID) && status != models.StatusAccepted:
			return s.reject(op, apperr.KindValidation, "the meeting admin is always attending", fields...)
		}

		return s.write(ctx, m, docstore.Update{
			Set: []docstore.Field{
				docstore.F("participant_status."+userID, status),
				docstore.F("updated_at", s.now()),
				docstore.F("updated_by", userID),
			},
		})
	})
	if err != nil {
		return err
	}

	s.audit.MeetingRSVP(ctx, userID, meetingID, status)
	return nil
}

// UpdateMeeting applies patch. Only the admin or the creator may do this.
func (s *Store) UpdateMeeting(ctx context.Context, meetingID string, patch models.MeetingPatch, userID string) (models.Meeting, error) {
	const op = "UpdateMeeting"

	patch.Title = cleaned(patch.Title, htmlsanitize.PlainText)
	patch.Location = cleaned(patch.Location, htmlsanitize.PlainText)
	patch.Description = cleaned(patch.Description, htmlsanitize.Sanitize)
	if res := inputval.Validate(patch); res.HasErrors() {
		return models.Meeting{}, apperr.New(apperr.KindValidation, op, res.First())
	}

	var out models.Meeting
	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		m, err := s.load(ctx, op, meetingID)
		if err != nil {
			return err
		}
		if !meetingpolicy.CanManageMeeting(m, userID) {
			return s.reject(op, apperr.KindForbidden, "only the meeting admin or creator can edit the meeting",
				zap.String("meeting_id", meetingID), zap.String("user_id", userID))
		}

		now := s.now()
		set := []docstore.Field{
			docstore.F("updated_at", now),
			docstore.F("updated_by", userID),
		}
		apply := func(p *string, dst *string, path string) {
			if p != nil {
				*dst = *p
				set = append(set, docstore.F(path, *p))
			}
		}
		apply(patch.Title, &m.Title, "title")
		apply(patch.Description, &m.Description, "description")
		apply(patch.Location, &m.Location, "location")
		apply(patch.Date, &m.Date, "date")
		apply(patch.Time, &m.Time, "time")
		apply(patch.Status, &m.Status, "status")

		if err := s.write(ctx, m, docstore.Update{Set: set}); err != nil {
			return err
		}
		m.UpdatedAt, m.UpdatedBy = now, userID
		m.Version++
		out = m
		return nil
	})
	if err != nil {
		return models.Meeting{}, err
	}

	s.audit.MeetingUpdated(ctx, userID, meetingID)
	return out, nil
}

// DeleteMeeting removes the meeting document. Same authorization as
// UpdateMeeting.
func (s *Store) DeleteMeeting(ctx context.Context, meetingID, userID string) error {
	const op = "DeleteMeeting"

	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		m, err := s.load(ctx, op, meetingID)
		if err != nil {
			return err
		}
		if !meetingpolicy.CanManageMeeting(m, userID) {
			return s.reject(op, apperr.KindForbidden, "only the meeting admin or creator can delete the meeting",
				zap.String("meeting_id", meetingID), zap.String("user_id", userID))
		}

		ctx, cancel := timeouts.Bound(ctx, timeouts.Short())
		defer cancel()
		return s.ds.Delete(ctx, Collection, m.ID, m.Version)
	})
	if err != nil {
		return err
	}

	s.audit.MeetingDeleted(ctx, userID, meetingID)
	return nil
}

func (s *Store) load(ctx context.Context, op, meetingID string) (models.Meeting, error) {
	ctx, cancel := timeouts.Bound(ctx, timeouts.Short())
	defer cancel()

	var m models.Meeting
	if err := s.ds.Get(ctx, Collection, meetingID, &m); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.Meeting{}, apperr.New(apperr.KindNotFound, op, "meeting not found")
		}
		return models.Meeting{}, err
	}
	return m, nil
}

func (s *Store) write(ctx context.Context, m models.Meeting, u docstore.Update) error {
	ctx, cancel := timeouts.Bound(ctx, timeouts.Short())
	defer cancel()
	return s.ds.Update(ctx, Collection, m.ID, m.Version, u)
}

func (s *Store) view(ctx context.Context, m models.Meeting, userID string) (models.MeetingView, error) {
	ctx, cancel := timeouts.Bound(ctx, timeouts.Long())
	defer cancel()

	profiles, err := userstore.ResolveAll(ctx, s.profiles, m.Participants)
	if err != nil {
		return models.MeetingView{}, err
	}
	return models.MeetingView{
		Meeting:             m,
		ParticipantProfiles: profiles,
		Counts:              m.CountByStatus(),
		IsAdmin:             meetingpolicy.IsAdmin(m, userID),
	}, nil
}

func (s *Store) reject(op string, kind apperr.Kind, msg string, fields ...zap.Field) error {
	s.log.Debug("request rejected",
		append([]zap.Field{zap.String("op", op), zap.String("kind", string(kind))}, fields...)...)
	return apperr.New(kind, op, msg)
}

func cleaned(p *string, clean func(string) string) *string {
	if p == nil {
		return nil
	}
	v := clean(*p)
	return &v
}
