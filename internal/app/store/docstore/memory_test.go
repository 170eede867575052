package docstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dalemusser/gatherhub/internal/app/store/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) docstore.Store { return docstore.NewMemory() })
}

func TestMemory_FailedUpdateLeavesDocumentUntouched(t *testing.T) {
	ctx := context.Background()
	s := docstore.NewMemory()
	require.NoError(t, s.Insert(ctx, coll, "d1", newDoc("d1", "a")))

	// "title" is a string, so adding to it as a set must fail as a whole,
	// including the title change in the same update.
	err := s.Update(ctx, coll, "d1", 1, docstore.Update{
		Set:      []docstore.Field{docstore.F("members", []string{"z"})},
		AddToSet: []docstore.Field{docstore.F("title", "x")},
	})
	require.Error(t, err)

	var got testDoc
	require.NoError(t, s.Get(ctx, coll, "d1", &got))
	assert.Equal(t, []string{"a"}, got.Members)
	assert.Equal(t, int64(1), got.Version)
}

func TestMemory_BeforeWriteHookSeesInterleavedWriter(t *testing.T) {
	ctx := context.Background()
	s := docstore.NewMemory()
	require.NoError(t, s.Insert(ctx, coll, "d1", newDoc("d1")))

	// The hook also fires for the intruding write itself, so guard with a
	// flag rather than sync.Once (which would block on re-entry).
	var fired atomic.Bool
	s.BeforeWrite = func(c, id string) {
		if fired.CompareAndSwap(false, true) {
			require.NoError(t, s.Update(ctx, c, id, 1, docstore.Update{
				AddToSet: []docstore.Field{docstore.F("members", "intruder")},
			}))
		}
	}

	err := s.Update(ctx, coll, "d1", 1, docstore.Update{
		AddToSet: []docstore.Field{docstore.F("members", "me")},
	})
	assert.ErrorIs(t, err, docstore.ErrVersionMismatch)
}

func TestMemory_ConcurrentAddToSet(t *testing.T) {
	ctx := context.Background()
	s := docstore.NewMemory()
	require.NoError(t, s.Insert(ctx, coll, "d1", newDoc("d1")))

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(member string) {
			defer wg.Done()
			for {
				var cur testDoc
				if err := s.Get(ctx, coll, "d1", &cur); err != nil {
					t.Error(err)
					return
				}
				err := s.Update(ctx, coll, "d1", cur.Version, docstore.Update{
					AddToSet: []docstore.Field{docstore.F("members", member)},
				})
				if err == nil {
					return
				}
				if err != docstore.ErrVersionMismatch {
					t.Error(err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	var got testDoc
	require.NoError(t, s.Get(ctx, coll, "d1", &got))
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, got.Members)
	assert.Equal(t, int64(5), got.Version)
}
