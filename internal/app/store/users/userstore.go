package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/gatherhub/internal/app/store/docstore"
	"github.com/dalemusser/gatherhub/internal/app/system/timeouts"
	"github.com/dalemusser/gatherhub/internal/domain/models"
)

// Collection holds user display records.
const Collection = "users"

// Resolver turns a user id into display data. Results are for rendering
// only and are never used for authorization.
type Resolver interface {
	ResolveProfile(ctx context.Context, userID string) (models.Profile, error)
}

type Store struct {
	ds docstore.Store
}

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// GetByID loads a user by id. Returns docstore.ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	ctx, cancel := timeouts.Bound(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	if err := s.ds.Get(ctx, Collection, id, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// ResolveProfile implements Resolver. Ids with no user record resolve to
// models.UnknownProfile rather than an error.
func (s *Store) ResolveProfile(ctx context.Context, userID string) (models.Profile, error) {
	u, err := s.GetByID(ctx, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.UnknownProfile(userID), nil
	}
	if err != nil {
		return models.Profile{}, err
	}
	return models.Profile{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}, nil
}

// ResolveAll resolves every id in order, stopping at the first failure.
func ResolveAll(ctx context.Context, r Resolver, ids []string) ([]models.Profile, error) {
	out := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		p, err := r.ResolveProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
