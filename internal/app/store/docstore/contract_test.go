package docstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/gatherhub/internal/app/store/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type item struct {
	Name  string            `bson:"name"`
	Count int64             `bson:"count"`
	Price float64           `bson:"price"`
	Tags  map[string]string `bson:"tags"`
}

type testDoc struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	Members   []string  `bson:"members"`
	Items     []item    `bson:"items"`
	Version   int64     `bson:"version"`
	CreatedAt time.Time `bson:"created_at"`
}

const coll = "contract_docs"

func newDoc(id string, members ...string) testDoc {
	if members == nil {
		members = []string{}
	}
	return testDoc{
		ID:        id,
		Title:     "doc " + id,
		Members:   members,
		Items:     []item{},
		Version:   1,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// runContract exercises the behaviour every Store backend must share.
func runContract(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	ctx := context.Background()

	t.Run("insert and get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, coll, "d1", newDoc("d1", "a")))

		var got testDoc
		require.NoError(t, s.Get(ctx, coll, "d1", &got))
		assert.Equal(t, "doc d1", got.Title)
		assert.Equal(t, []string{"a"}, got.Members)
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		var got testDoc
		assert.ErrorIs(t, s.Get(ctx, coll, "nope", &got), docstore.ErrNotFound)
	})

	t.Run("duplicate insert", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, coll, "d1", newDoc("d1")))
		assert.ErrorIs(t, s.Insert(ctx, coll, "d1", newDoc("d1")), docstore.ErrDuplicate)
	})

	t.Run("update bumps version and rejects stale version", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, coll, "d1", newDoc("d1")))

		require.NoError(t, s.Update(ctx, coll, "d1", 1, docstore.Update{
			Set: []docstore.Field{docstore.F("title", "renamed")},
		}))
		err := s.Update(ctx, coll, "d1", 1, docstore.Update{
			Set: []docstore.Field{docstore.F("title", "stale")},
		})
		assert.ErrorIs(t, err, docstore.ErrVersionMismatch)

		var got testDoc
		require.NoError(t, s.Get(ctx, coll, "d1", &got))
		assert.Equal(t, "renamed", got.Title)
		assert.Equal(t, int64(2), got.Version)
	})

	t.Run("update missing document", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(ctx, coll, "ghost", 1, docstore.Update{
			Set: []docstore.Field{docstore.F("title", "x")},
		})
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("add to set, pull and push", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, coll, "d1", newDoc("d1", "a")))

		require.NoError(t, s.Update(ctx, coll, "d1", 1, docstore.Update{
			AddToSet: []docstore.Field{docstore.F("members", "b")},
		}))
		// Adding an existing element is a no-op on the set.
		require.NoError(t, s.Update(ctx, coll, "d1", 2, docstore.Update{
			AddToSet: []docstore.Field{docstore.F("members", "b")},
		}))
		require.NoError(t, s.Update(ctx, coll, "d1", 3, docstore.Update{
			Pull: []docstore.Field{docstore.F("members", "a")},
			Push: []docstore.Field{docstore.F("items", item{Name: "x", Tags: map[string]string{}})},
		}))

		var got testDoc
		require.NoError(t, s.Get(ctx, coll, "d1", &got))
		assert.Equal(t, []string{"b"}, got.Members)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "x", got.Items[0].Name)
		assert.Equal(t, int64(4), got.Version)
	})

	t.Run("positional update on embedded element", func(t *testing.T) {
		s := newStore(t)
		d := newDoc("d1")
		d.Items = []item{
			{Name: "first", Tags: map[string]string{}},
			{Name: "second", Tags: map[string]string{"k": "old"}},
		}
		require.NoError(t, s.Insert(ctx, coll, "d1", d))

		require.NoError(t, s.Update(ctx, coll, "d1", 1, docstore.Update{
			Set:  []docstore.Field{docstore.F("items.$.tags.k", "new")},
			Elem: &docstore.ElemMatch{Array: "items", Key: "name", Value: "second"},
		}))

		var got testDoc
		require.NoError(t, s.Get(ctx, coll, "d1", &got))
		assert.Empty(t, got.Items[0].Tags)
		assert.Equal(t, "new", got.Items[1].Tags["k"])

		// An element that is not there behaves like a stale read.
		err := s.Update(ctx, coll, "d1", 2, docstore.Update{
			Set:  []docstore.Field{docstore.F("items.$.tags.k", "x")},
			Elem: &docstore.ElemMatch{Array: "items", Key: "name", Value: "missing"},
		})
		assert.ErrorIs(t, err, docstore.ErrVersionMismatch)
	})

	t.Run("pull embedded element by field", func(t *testing.T) {
		s := newStore(t)
		d := newDoc("d1")
		d.Items = []item{
			{Name: "keep", Tags: map[string]string{}},
			{Name: "drop", Tags: map[string]string{"k": "v"}},
		}
		require.NoError(t, s.Insert(ctx, coll, "d1", d))

		require.NoError(t, s.Update(ctx, coll, "d1", 1, docstore.Update{
			Pull: []docstore.Field{docstore.F("items", bson.M{"name": "drop"})},
		}))

		var got testDoc
		require.NoError(t, s.Get(ctx, coll, "d1", &got))
		require.Len(t, got.Items, 1)
		assert.Equal(t, "keep", got.Items[0].Name)
	})

	t.Run("find contains with sort", func(t *testing.T) {
		s := newStore(t)
		older := newDoc("d1", "a", "b")
		older.CreatedAt = older.CreatedAt.Add(-time.Hour)
		require.NoError(t, s.Insert(ctx, coll, "d1", older))
		require.NoError(t, s.Insert(ctx, coll, "d2", newDoc("d2", "b")))
		require.NoError(t, s.Insert(ctx, coll, "d3", newDoc("d3", "c")))

		var got []testDoc
		require.NoError(t, s.FindContains(ctx, coll, "members", "b", &got, docstore.SortBy("created_at", true)))
		require.Len(t, got, 2)
		assert.Equal(t, "d2", got[0].ID)
		assert.Equal(t, "d1", got[1].ID)

		var none []testDoc
		require.NoError(t, s.FindContains(ctx, coll, "members", "zzz", &none))
		assert.Empty(t, none)
	})

	t.Run("conditional delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, coll, "d1", newDoc("d1")))

		assert.ErrorIs(t, s.Delete(ctx, coll, "d1", 7), docstore.ErrVersionMismatch)
		require.NoError(t, s.Delete(ctx, coll, "d1", 1))
		assert.ErrorIs(t, s.Delete(ctx, coll, "d1", 1), docstore.ErrNotFound)
	})

	t.Run("expired context is unavailable", func(t *testing.T) {
		s := newStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		var got testDoc
		err := s.Get(cctx, coll, "d1", &got)
		require.Error(t, err)
		assert.True(t, errors.Is(err, docstore.ErrUnavailable), "got %v", err)
	})
}
