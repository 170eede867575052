package groupstore_test

import (
	"math/rand"
	"testing"

	"github.com/dalemusser/gatherhub/internal/app/system/apperr"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteAccept_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	g, err := env.store.CreateGroup(env.ctx, models.GroupInput{Name: "G"}, "A")
	require.NoError(t, err)

	require.NoError(t, env.store.InviteToGroup(env.ctx, g.ID, "B", "A"))
	got := env.raw(t, g.ID)
	assert.Equal(t, []string{"B"}, got.PendingMembers)
	assertInvariants(t, got)

	require.NoError(t, env.store.AcceptGroupInvitation(env.ctx, g.ID, "B"))
	got = env.raw(t, g.ID)
	assert.ElementsMatch(t, []string{"A", "B"}, got.Members)
	assert.Empty(t, got.PendingMembers)
	assertInvariants(t, got)
}

func TestInviteReject_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	g := env.fx.CreateGroup(env.ctx, "G", "A", nil, nil)

	require.NoError(t, env.store.InviteToGroup(env.ctx, g.ID, "B", "A"))
	require.NoError(t, env.store.RejectGroupInvitation(env.ctx, g.ID, "B"))

	got := env.raw(t, g.ID)
	assert.NotContains(t, got.Members, "B")
	assert.NotContains(t, got.PendingMembers, "B")
	assertInvariants(t, got)
}

func TestInviteToGroup_Errors(t *testing.T) {
	env := newTestEnv(t)
	g := env.fx.CreateGroup(env.ctx, "G", "A", []string{"B"}, []string{"C"})

	tests := []struct {
		name    string
		invited string
		inviter string
		want    error
	}{
		{"non-member inviter", "D", "C", apperr.ErrForbidden},
		{"stranger inviter", "D", "Z", apperr.ErrForbidden},
		{"already member", "B", "A", apperr.ErrAlreadyMember},
		{"inviting yourself", "A", "A", apperr.ErrAlreadyMember},
		{"already invited", "C", "B", apperr.ErrAlreadyInvited},
		{"bad id", "x.y", "A", apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := env.raw(t, g.ID)
			err := env.store.InviteToGroup(env.ctx, g.ID, tt.invited, tt.inviter)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, env.raw(t, g.ID), "state must be unchanged")
		})
	}

	assert.ErrorIs(t, env.store.InviteToGroup(env.ctx, "missing", "D", "A"), apperr.ErrNotFound)
}

func TestAcceptReject_NoInvitation(t *testing.T) {
	env := newTestEnv(t)
	g := env.fx.CreateGroup(env.ctx, "G", "A", []string{"B"}, nil)

	assert.ErrorIs(t, env.store.AcceptGroupInvitation(env.ctx, g.ID, "C"), apperr.ErrNoActiveInvitation)
	assert.ErrorIs(t, env.store.RejectGroupInvitation(env.ctx, g.ID, "C"), apperr.ErrNoActiveInvitation)
	// Members have nothing to accept either.
	assert.ErrorIs(t, env.store.AcceptGroupInvitation(env.ctx, g.ID, "B"), apperr.ErrNoActiveInvitation)
}

func TestLeaveGroup(t *testing.T) {
	t.Run("creator cannot leave", func(t *testing.T) {
		env := newTestEnv(t)
		g := env.fx.CreateGroup(env.ctx, "G", "A", []string{"B"}, nil)
		before := env.raw(t, g.ID)

		err := env.store.LeaveGroup(env.ctx, g.ID, "A")
		assert.ErrorIs(t, err, apperr.ErrCreatorCannotLeave)
		assert.Equal(t, before, env.raw(t, g.ID))
	})

	t.Run("non-member", func(t *testing.T) {
		env := newTestEnv(t)
		g := env.fx.CreateGroup(env.ctx, "G", "A", nil, []string{"C"})
		assert.ErrorIs(t, env.store.LeaveGroup(env.ctx, g.ID, "C"), apperr.ErrNotAMember)
	})

	t.Run("plain member", func(t *testing.T) {
		env := newTestEnv(t)
		g := env.fx.CreateGroup(env.ctx, "G", "A", []string{"B"}, nil)

		require.NoError(t, env.store.LeaveGroup(env.ctx, g.ID, "B"))
		got := env.raw(t, g.ID)
		assert.Equal(t, []string{"A"}, got.Members)
		assert.Equal(t, "A", got.AdminID)
		assertInvariants(t, got)
	})

	t.Run("admin leaving hands admin back to creator", func(t *testing.T) {
		env := newTestEnv(t)
		g := env.fx.InsertGroup(env.ctx, models.Group{
			Name:      "G",
			CreatedBy: "A",
			AdminID:   "B",
			Members:   []string{"A", "B"},
		})

		require.NoError(t, env.store.LeaveGroup(env.ctx, g.ID, "B"))
		got := env.raw(t, g.ID)
		assert.Equal(t, "A", got.AdminID)
		assert.Equal(t, []string{"A"}, got.Members)
		assertInvariants(t, got)
	})
}

func TestRemoveMember(t *testing.T) {
	newGroup := func(t *testing.T) (*testEnv, models.Group) {
		env := newTestEnv(t)
		g := env.fx.InsertGroup(env.ctx, models.Group{
			Name:      "G",
			CreatedBy: "A",
			AdminID:   "B",
			Members:   []string{"A", "B", "C", "D"},
		})
		return env, g
	}

	t.Run("admin removes member", func(t *testing.T) {
		env, g := newGroup(t)
		require.NoError(t, env.store.RemoveMember(env.ctx, g.ID, "C", "B"))
		got := env.raw(t, g.ID)
		assert.ElementsMatch(t, []string{"A", "B", "D"}, got.Members)
		assertInvariants(t, got)
	})

	t.Run("creator removes admin", func(t *testing.T) {
		env, g := newGroup(t)
		require.NoError(t, env.store.RemoveMember(env.ctx, g.ID, "B", "A"))
		got := env.raw(t, g.ID)
		assert.Equal(t, "A", got.AdminID)
		assert.NotContains(t, got.Members, "B")
		assertInvariants(t, got)
	})

	tests := []struct {
		name   string
		target string
		acting string
		want   error
	}{
		{"member cannot remove", "D", "C", apperr.ErrForbidden},
		{"creator cannot be removed", "A", "B", apperr.ErrCannotRemoveCreator},
		{"target not a member", "Z", "A", apperr.ErrNotAMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, g := newGroup(t)
			before := env.raw(t, g.ID)
			assert.ErrorIs(t, env.store.RemoveMember(env.ctx, g.ID, tt.target, tt.acting), tt.want)
			assert.Equal(t, before, env.raw(t, g.ID))
		})
	}
}

func TestFetchPendingGroupInvitations(t *testing.T) {
	env := newTestEnv(t)
	alice := env.fx.CreateUser(env.ctx, "Alice")
	g := env.fx.CreateGroup(env.ctx, "Hikers", alice.ID, []string{"B", "C"}, []string{"D"})
	env.fx.CreateGroup(env.ctx, "Unrelated", alice.ID, nil, []string{"E"})

	invs, err := env.store.FetchPendingGroupInvitations(env.ctx, "D")
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.Equal(t, g.ID, invs[0].GroupID)
	assert.Equal(t, "Hikers", invs[0].GroupName)
	assert.Equal(t, "Alice", invs[0].CreatorName)
	assert.Equal(t, 3, invs[0].MemberCount)

	require.NoError(t, env.store.AcceptGroupInvitation(env.ctx, g.ID, "D"))
	invs, err = env.store.FetchPendingGroupInvitations(env.ctx, "D")
	require.NoError(t, err)
	assert.Empty(t, invs)
}

// TestMembershipInvariants_RandomSequences drives random operation
// sequences and checks the set invariants after each step.
func TestMembershipInvariants_RandomSequences(t *testing.T) {
	users := []string{"A", "B", "C", "D", "E"}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		env := newTestEnv(t)
		g := env.fx.CreateGroup(env.ctx, "G", "A", nil, nil)

		for step := 0; step < 40; step++ {
			x := users[rng.Intn(len(users))]
			y := users[rng.Intn(len(users))]
			switch rng.Intn(5) {
			case 0:
				_ = env.store.InviteToGroup(env.ctx, g.ID, x, y)
			case 1:
				_ = env.store.AcceptGroupInvitation(env.ctx, g.ID, x)
			case 2:
				_ = env.store.RejectGroupInvitation(env.ctx, g.ID, x)
			case 3:
				_ = env.store.LeaveGroup(env.ctx, g.ID, x)
			case 4:
				_ = env.store.RemoveMember(env.ctx, g.ID, x, y)
			}
			assertInvariants(t, env.raw(t, g.ID))
		}
	}
}
