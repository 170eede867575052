package groupstore

import (
	"context"
	"slices"

	"github.com/dalemusser/gatherhub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/gatherhub/internal/app/store/docstore"
	"github.com/dalemusser/gatherhub/internal/app/system/apperr"
	"github.com/dalemusser/gatherhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
	"github.com/dalemusser/gatherhub/internal/app/system/txn"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Events live in the group's "events" array. Element edits go through the
// positional "events.$" path selected by event id, so an RSVP only ever
// touches one key of one event's participant_status map.

// eventElem selects the embedded event with the given id.
func eventElem(eventID string) *docstore.ElemMatch {
	return &docstore.ElemMatch{Array: "events", Key: "id", Value: eventID}
}

// CreateEvent appends a new event. Participants are the group's members at
// this moment; the creator starts accepted and everyone else pending.
func (s *Store) CreateEvent(ctx context.Context, groupID string, in models.EventInput, creatorID string) (models.Event, error) {
	const op = "CreateEvent"

	in.Title = htmlsanitize.PlainText(in.Title)
	in.Location = htmlsanitize.PlainText(in.Location)
	in.Description = htmlsanitize.Sanitize(in.Description)
	if res := inputval.Validate(in); res.HasErrors() {
		return models.Event{}, apperr.New(apperr.KindValidation, op, res.First())
	}

	eventID := uuid.NewString()
	var out models.Event
	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		if !grouppolicy.IsMember(g, creatorID) {
			return s.reject(op, apperr.KindForbidden, "only members can create events",
				zap.String("group_id", groupID), zap.String("user_id", creatorID))
		}

		now := s.now()
		participants := slices.Clone(g.Members)
		e := models.Event{
			ID:                eventID,
			Title:             in.Title,
			Description:       in.Description,
			Location:          in.Location,
			Date:              in.Date,
			Time:              in.Time,
			CreatedBy:         creatorID,
			CreatedAt:         now,
			Participants:      participants,
			ParticipantStatus: models.SeedStatus(participants, creatorID),
		}
		if err := s.write(ctx, g, docstore.Update{
			Set:  stamp(now, creatorID),
			Push: []docstore.Field{docstore.F("events", e)},
		}); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return models.Event{}, err
	}

	s.audit.EventCreated(ctx, creatorID, groupID, out)
	return out, nil
}

// RespondToEvent records userID's RSVP. Setting pending again is allowed and
// means "undecided".
func (s *Store) RespondToEvent(ctx context.Context, groupID, eventID, userID string, status models.ParticipationStatus) error {
	const op = "RespondToEvent"
	if !status.Valid() {
		return apperr.Newf(apperr.KindValidation, op, "status must be pending, accepted or declined, got %q", status)
	}
	if err := checkUserID(op, "user", userID); err != nil {
		return err
	}

	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		fields := []zap.Field{zap.String("group_id", groupID), zap.String("event_id", eventID), zap.String("user_id", userID)}
		if !grouppolicy.IsMember(g, userID) {
			return s.reject(op, apperr.KindForbidden, "only members can respond to events", fields...)
		}
		e, ok := g.FindEvent(eventID)
		if !ok {
			return s.reject(op, apperr.KindEventNotFound, "event not found", fields...)
		}
		if !slices.Contains(e.Participants, userID) {
			return s.reject(op, apperr.KindNotInvited, "you were not invited to this event", fields...)
		}

		return s.write(ctx, g, docstore.Update{
			Set:  append(stamp(s.now(), userID), docstore.F("events.$.participant_status."+userID, status)),
			Elem: eventElem(eventID),
		})
	})
	if err != nil {
		return err
	}

	s.audit.EventRSVP(ctx, userID, groupID, eventID, status)
	return nil
}

// UpdateEvent edits an event. Allowed for the event creator, the group admin
// and the group creator.
func (s *Store) UpdateEvent(ctx context.Context, groupID, eventID string, patch models.EventPatch, userID string) (models.Event, error) {
	const op = "UpdateEvent"

	patch.Title = cleaned(patch.Title, htmlsanitize.PlainText)
	patch.Location = cleaned(patch.Location, htmlsanitize.PlainText)
	patch.Description = cleaned(patch.Description, htmlsanitize.Sanitize)
	if res := inputval.Validate(patch); res.HasErrors() {
		return models.Event{}, apperr.New(apperr.KindValidation, op, res.First())
	}

	var out models.Event
	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		fields := []zap.Field{zap.String("group_id", groupID), zap.String("event_id", eventID), zap.String("user_id", userID)}
		e, ok := g.FindEvent(eventID)
		if !ok {
			return s.reject(op, apperr.KindEventNotFound, "event not found", fields...)
		}
		if !grouppolicy.CanManageEvent(g, e, userID) {
			return s.reject(op, apperr.KindForbidden, "only the event creator or a group admin can edit this event", fields...)
		}

		now := s.now()
		set := []docstore.Field{
			docstore.F("events.$.updated_at", now),
			docstore.F("events.$.updated_by", userID),
		}
		apply := func(p *string, dst *string, path string) {
			if p != nil {
				*dst = *p
				set = append(set, docstore.F("events.$."+path, *p))
			}
		}
		apply(patch.Title, &e.Title, "title")
		apply(patch.Description, &e.Description, "description")
		apply(patch.Location, &e.Location, "location")
		apply(patch.Date, &e.Date, "date")
		apply(patch.Time, &e.Time, "time")

		if err := s.write(ctx, g, docstore.Update{Set: set, Elem: eventElem(eventID)}); err != nil {
			return err
		}
		e.UpdatedAt, e.UpdatedBy = &now, userID
		out = e
		return nil
	})
	if err != nil {
		return models.Event{}, err
	}

	s.audit.EventUpdated(ctx, userID, groupID, eventID)
	return out, nil
}

// DeleteEvent removes an event. Same authorization as UpdateEvent.
func (s *Store) DeleteEvent(ctx context.Context, groupID, eventID, userID string) error {
	const op = "DeleteEvent"

	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		fields := []zap.Field{zap.String("group_id", groupID), zap.String("event_id", eventID), zap.String("user_id", userID)}
		e, ok := g.FindEvent(eventID)
		if !ok {
			return s.reject(op, apperr.KindEventNotFound, "event not found", fields...)
		}
		if !grouppolicy.CanManageEvent(g, e, userID) {
			return s.reject(op, apperr.KindForbidden, "only the event creator or a group admin can delete this event", fields...)
		}

		return s.write(ctx, g, docstore.Update{
			Set:  stamp(s.now(), userID),
			Pull: []docstore.Field{docstore.F("events", bson.M{"id": eventID})},
		})
	})
	if err != nil {
		return err
	}

	s.audit.EventDeleted(ctx, userID, groupID, eventID)
	return nil
}

// ListEvents returns the group's events in creation order with RSVP tallies.
// Members only.
func (s *Store) ListEvents(ctx context.Context, groupID, userID string) ([]models.EventView, error) {
	const op = "ListEvents"
	g, err := s.load(ctx, op, groupID)
	if err != nil {
		return nil, txn.StoreError(op, err)
	}
	if !grouppolicy.IsMember(g, userID) {
		return nil, s.reject(op, apperr.KindForbidden, "only members can view events",
			zap.String("group_id", groupID), zap.String("user_id", userID))
	}

	out := make([]models.EventView, 0, len(g.Events))
	for _, e := range g.Events {
		out = append(out, models.EventView{Event: e, Counts: CountByStatus(e)})
	}
	return out, nil
}

// GetEvent returns one event with its RSVP tally. Members only.
func (s *Store) GetEvent(ctx context.Context, groupID, eventID, userID string) (models.EventView, error) {
	const op = "GetEvent"
	g, err := s.load(ctx, op, groupID)
	if err != nil {
		return models.EventView{}, txn.StoreError(op, err)
	}
	fields := []zap.Field{zap.String("group_id", groupID), zap.String("event_id", eventID), zap.String("user_id", userID)}
	if !grouppolicy.IsMember(g, userID) {
		return models.EventView{}, s.reject(op, apperr.KindForbidden, "only members can view events", fields...)
	}
	e, ok := g.FindEvent(eventID)
	if !ok {
		return models.EventView{}, s.reject(op, apperr.KindEventNotFound, "event not found", fields...)
	}
	return models.EventView{Event: e, Counts: CountByStatus(e)}, nil
}

// CountByStatus tallies an event's RSVPs; participants with no entry count
// as pending.
func CountByStatus(e models.Event) models.StatusCounts {
	return e.CountByStatus()
}
