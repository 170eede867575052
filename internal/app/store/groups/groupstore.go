// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/gatherhub/internal/app/policy/grouppolicy"
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

// Collection holds group documents, each with its embedded events.
const Collection = "groups"

// Options configures a Store. Zero values are usable.
type Options struct {
	// Profiles resolves member ids for display. Defaults to the users
	// collection in the same document store.
	Profiles userstore.Resolver
	// Audit records successful mutations. Nil disables auditing.
	Audit *auditlog.Logger
	// Logger receives rejection, retry and outage logs.
	Logger *zap.Logger
	// ConflictRetries bounds the optimistic read-check-write attempts.
	ConflictRetries int
}

// Store is the group repository. It is the only writer of group documents
// and checks every invariant against a fresh read inside the same
// conditional write.
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

/*─────────────────────────────────────────────────────────────────────────────*
| Create / read                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateGroup stores a new group with the creator as sole member and admin.
func (s *Store) CreateGroup(ctx context.Context, in models.GroupInput, creatorID string) (models.Group, error) {
	const op = "CreateGroup"
	if err := checkUserID(op, "creator", creatorID); err != nil {
		return models.Group{}, err
	}

	in.Name = htmlsanitize.PlainText(in.Name)
	in.Description = htmlsanitize.Sanitize(in.Description)
	in.Icon = htmlsanitize.PlainText(in.Icon)
	in.Color = htmlsanitize.PlainText(in.Color)
	if res := inputval.Validate(in); res.HasErrors() {
		return models.Group{}, apperr.New(apperr.KindValidation, op, res.First())
	}

	now := s.now()
	g := models.Group{
		ID:             primitive.NewObjectID().Hex(),
		Name:           in.Name,
		Description:    in.Description,
		Icon:           in.Icon,
		Color:          in.Color,
		CreatedBy:      creatorID,
		AdminID:        creatorID,
		Members:        []string{creatorID},
		PendingMembers: []string{},
		Events:         []models.Event{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
		UpdatedBy:      creatorID,
	}

	if err := s.insert(ctx, g); err != nil {
		return models.Group{}, txn.StoreError(op, err)
	}

	s.audit.GroupCreated(ctx, creatorID, g.ID, g.Name)
	return g, nil
}

// GetGroup returns the group as seen by userID, who must be a member.
func (s *Store) GetGroup(ctx context.Context, groupID, userID string) (models.GroupView, error) {
	const op = "GetGroup"
	g, err := s.load(ctx, op, groupID)
	if err != nil {
		return models.GroupView{}, txn.StoreError(op, err)
	}
	if !grouppolicy.IsMember(g, userID) {
		return models.GroupView{}, s.reject(op, apperr.KindForbidden, "only members can view this group",
			zap.String("group_id", groupID), zap.String("user_id", userID))
	}
	v, err := s.view(ctx, g, userID)
	if err != nil {
		return models.GroupView{}, txn.StoreError(op, err)
	}
	return v, nil
}

// FetchUserGroups lists every group userID belongs to, newest first.
func (s *Store) FetchUserGroups(ctx context.Context, userID string) ([]models.GroupView, error) {
	const op = "FetchUserGroups"
	if err := checkUserID(op, "user", userID); err != nil {
		return nil, err
	}

	var groups []models.Group
	if err := s.find(ctx, "members", userID, &groups); err != nil {
		return nil, txn.StoreError(op, err)
	}

	out := make([]models.GroupView, 0, len(groups))
	for _, g := range groups {
		v, err := s.view(ctx, g, userID)
		if err != nil {
			return nil, txn.StoreError(op, err)
		}
		out = append(out, v)
	}
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Update / delete                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// UpdateGroup applies patch. Only the admin or the creator may do this.
func (s *Store) UpdateGroup(ctx context.Context, groupID string, patch models.GroupPatch, userID string) (models.Group, error) {
	const op = "UpdateGroup"

	patch.Name = cleaned(patch.Name, htmlsanitize.PlainText)
	patch.Description = cleaned(patch.Description, htmlsanitize.Sanitize)
	patch.Icon = cleaned(patch.Icon, htmlsanitize.PlainText)
	patch.Color = cleaned(patch.Color, htmlsanitize.PlainText)
	if res := inputval.Validate(patch); res.HasErrors() {
		return models.Group{}, apperr.New(apperr.KindValidation, op, res.First())
	}

	var out models.Group
	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		if !grouppolicy.CanManageGroup(g, userID) {
			return s.reject(op, apperr.KindForbidden, "only the group admin or creator can edit the group",
				zap.String("group_id", groupID), zap.String("user_id", userID))
		}

		now := s.now()
		u := docstore.Update{Set: stamp(now, userID)}
		if patch.Name != nil {
			g.Name = *patch.Name
			u.Set = append(u.Set, docstore.F("name", g.Name))
		}
		if patch.Description != nil {
			g.Description = *patch.Description
			u.Set = append(u.Set, docstore.F("description", g.Description))
		}
		if patch.Icon != nil {
			g.Icon = *patch.Icon
			u.Set = append(u.Set, docstore.F("icon", g.Icon))
		}
		if patch.Color != nil {
			g.Color = *patch.Color
			u.Set = append(u.Set, docstore.F("color", g.Color))
		}
		if err := s.write(ctx, g, u); err != nil {
			return err
		}

		g.UpdatedAt, g.UpdatedBy = now, userID
		g.Version++
		out = g
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}

	s.audit.GroupUpdated(ctx, userID, groupID)
	return out, nil
}

// DeleteGroup removes the group and every embedded event in one write.
func (s *Store) DeleteGroup(ctx context.Context, groupID, userID string) error {
	const op = "DeleteGroup"

	var name string
	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		if !grouppolicy.CanManageGroup(g, userID) {
			return s.reject(op, apperr.KindForbidden, "only the group admin or creator can delete the group",
				zap.String("group_id", groupID), zap.String("user_id", userID))
		}
		name = g.Name

		ctx, cancel := timeouts.Bound(ctx, timeouts.Short())
		defer cancel()
		return s.ds.Delete(ctx, Collection, g.ID, g.Version)
	})
	if err != nil {
		return err
	}

	s.audit.GroupDeleted(ctx, userID, groupID, name)
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// load reads the current group document. A missing group is NotFound.
func (s *Store) load(ctx context.Context, op, groupID string) (models.Group, error) {
	ctx, cancel := timeouts.Bound(ctx, timeouts.Short())
	defer cancel()

	var g models.Group
	if err := s.ds.Get(ctx, Collection, groupID, &g); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.Group{}, apperr.New(apperr.KindNotFound, op, "group not found")
		}
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) insert(ctx context.Context, g models.Group) error {
	ctx, cancel := timeouts.Bound(ctx, timeouts.Short())
	defer cancel()
	return s.ds.Insert(ctx, Collection, g.ID, g)
}

// write applies u conditionally on the version g was read at.
func (s *Store) write(ctx context.Context, g models.Group, u docstore.Update) error {
	ctx, cancel := timeouts.Bound(ctx, timeouts.Short())
	defer cancel()
	return s.ds.Update(ctx, Collection, g.ID, g.Version, u)
}

func (s *Store) find(ctx context.Context, field, userID string, out *[]models.Group) error {
	ctx, cancel := timeouts.Bound(ctx, timeouts.Short())
	defer cancel()
	return s.ds.FindContains(ctx, Collection, field, userID, out, docstore.SortBy("created_at", true))
}

func (s *Store) view(ctx context.Context, g models.Group, userID string) (models.GroupView, error) {
	ctx, cancel := timeouts.Bound(ctx, timeouts.Long())
	defer cancel()

	profiles, err := userstore.ResolveAll(ctx, s.profiles, g.Members)
	if err != nil {
		return models.GroupView{}, err
	}
	return models.GroupView{
		Group:          g,
		MemberProfiles: profiles,
		IsAdmin:        grouppolicy.IsAdmin(g, userID),
		IsCreator:      grouppolicy.IsCreator(g, userID),
	}, nil
}

// reject logs a refused mutation at debug and returns the typed error.
func (s *Store) reject(op string, kind apperr.Kind, msg string, fields ...zap.Field) error {
	s.log.Debug("request rejected",
		append([]zap.Field{zap.String("op", op), zap.String("kind", string(kind))}, fields...)...)
	return apperr.New(kind, op, msg)
}

func stamp(now time.Time, userID string) []docstore.Field {
	return []docstore.Field{
		docstore.F("updated_at", now),
		docstore.F("updated_by", userID),
	}
}

func checkUserID(op, role, id string) error {
	if !inputval.IsValidUserID(id) {
		return apperr.Newf(apperr.KindValidation, op, "invalid %s id", role)
	}
	return nil
}

// cleaned returns a sanitised copy of *p, leaving the caller's value alone.
func cleaned(p *string, clean func(string) string) *string {
	if p == nil {
		return nil
	}
	v := clean(*p)
	return &v
}
