package groupstore

import (
	"context"

	"github.com/dalemusser/gatherhub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/gatherhub/internal/app/store/docstore"
	"github.com/dalemusser/gatherhub/internal/app/system/apperr"
	"github.com/dalemusser/gatherhub/internal/app/system/timeouts"
	"github.com/dalemusser/gatherhub/internal/app/system/txn"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"go.uber.org/zap"
)

// Membership changes touch members and pending_members with $addToSet and
// $pull only. The version check makes each decide-then-write cycle atomic;
// the set primitives keep unrelated concurrent edits from overwriting each
// other.

// InviteToGroup adds invitedID to the pending list. Any member may invite.
func (s *Store) InviteToGroup(ctx context.Context, groupID, invitedID, inviterID string) error {
	const op = "InviteToGroup"
	if err := checkUserID(op, "invited user", invitedID); err != nil {
		return err
	}

	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		fields := []zap.Field{zap.String("group_id", groupID), zap.String("inviter_id", inviterID), zap.String("invited_id", invitedID)}
		switch {
		case !grouppolicy.CanInvite(g, inviterID):
			return s.reject(op, apperr.KindForbidden, "only members can invite", fields...)
		case grouppolicy.IsMember(g, invitedID):
			return s.reject(op, apperr.KindAlreadyMember, "user is already a member", fields...)
		case grouppolicy.IsPending(g, invitedID):
			return s.reject(op, apperr.KindAlreadyInvited, "user has already been invited", fields...)
		}

		return s.write(ctx, g, docstore.Update{
			Set:      stamp(s.now(), inviterID),
			AddToSet: []docstore.Field{docstore.F("pending_members", invitedID)},
		})
	})
	if err != nil {
		return err
	}

	s.audit.MemberInvited(ctx, inviterID, groupID, invitedID)
	return nil
}

// AcceptGroupInvitation moves userID from pending_members to members in a
// single write.
func (s *Store) AcceptGroupInvitation(ctx context.Context, groupID, userID string) error {
	const op = "AcceptGroupInvitation"

	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		if !grouppolicy.IsPending(g, userID) {
			return s.reject(op, apperr.KindNoActiveInvitation, "no active invitation",
				zap.String("group_id", groupID), zap.String("user_id", userID))
		}

		return s.write(ctx, g, docstore.Update{
			Set:      stamp(s.now(), userID),
			Pull:     []docstore.Field{docstore.F("pending_members", userID)},
			AddToSet: []docstore.Field{docstore.F("members", userID)},
		})
	})
	if err != nil {
		return err
	}

	s.audit.InvitationAccepted(ctx, userID, groupID)
	return nil
}

// RejectGroupInvitation drops userID from pending_members.
func (s *Store) RejectGroupInvitation(ctx context.Context, groupID, userID string) error {
	const op = "RejectGroupInvitation"

	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		if !grouppolicy.IsPending(g, userID) {
			return s.reject(op, apperr.KindNoActiveInvitation, "no active invitation",
				zap.String("group_id", groupID), zap.String("user_id", userID))
		}

		return s.write(ctx, g, docstore.Update{
			Set:  stamp(s.now(), userID),
			Pull: []docstore.Field{docstore.F("pending_members", userID)},
		})
	})
	if err != nil {
		return err
	}

	s.audit.InvitationRejected(ctx, userID, groupID)
	return nil
}

// LeaveGroup removes userID from members. The creator cannot leave. When the
// admin leaves, the admin role returns to the creator in the same write.
func (s *Store) LeaveGroup(ctx context.Context, groupID, userID string) error {
	const op = "LeaveGroup"

	var reassigned bool
	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		fields := []zap.Field{zap.String("group_id", groupID), zap.String("user_id", userID)}
		switch {
		case !grouppolicy.IsMember(g, userID):
			return s.reject(op, apperr.KindNotAMember, "not a member of this group", fields...)
		case grouppolicy.IsCreator(g, userID):
			return s.reject(op, apperr.KindCreatorCannotLeave, "the group creator cannot leave; delete the group instead", fields...)
		}

		u := docstore.Update{
			Set:  stamp(s.now(), userID),
			Pull: []docstore.Field{docstore.F("members", userID)},
		}
		reassigned = grouppolicy.IsAdmin(g, userID)
		if reassigned {
			u.Set = append(u.Set, docstore.F("admin_id", g.CreatedBy))
		}
		return s.write(ctx, g, u)
	})
	if err != nil {
		return err
	}

	s.audit.MemberLeft(ctx, userID, groupID, reassigned)
	return nil
}

// RemoveMember removes targetID on behalf of the admin or creator. Removing
// the current admin hands the role back to the creator.
func (s *Store) RemoveMember(ctx context.Context, groupID, targetID, actingID string) error {
	const op = "RemoveMember"

	err := txn.Retry(ctx, s.attempts, s.log, op, func(ctx context.Context) error {
		g, err := s.load(ctx, op, groupID)
		if err != nil {
			return err
		}
		fields := []zap.Field{zap.String("group_id", groupID), zap.String("acting_id", actingID), zap.String("target_id", targetID)}
		switch {
		case !grouppolicy.CanManageGroup(g, actingID):
			return s.reject(op, apperr.KindForbidden, "only the group admin or creator can remove members", fields...)
		case grouppolicy.IsCreator(g, targetID):
			return s.reject(op, apperr.KindCannotRemoveCreator, "the group creator cannot be removed", fields...)
		case !grouppolicy.IsMember(g, targetID):
			return s.reject(op, apperr.KindNotAMember, "user is not a member of this group", fields...)
		}

		u := docstore.Update{
			Set:  stamp(s.now(), actingID),
			Pull: []docstore.Field{docstore.F("members", targetID)},
		}
		if grouppolicy.IsAdmin(g, targetID) {
			u.Set = append(u.Set, docstore.F("admin_id", g.CreatedBy))
		}
		return s.write(ctx, g, u)
	})
	if err != nil {
		return err
	}

	s.audit.MemberRemoved(ctx, actingID, groupID, targetID)
	return nil
}

// FetchPendingGroupInvitations lists the groups userID has been invited to,
// newest first, with the creator's display name and the member count.
func (s *Store) FetchPendingGroupInvitations(ctx context.Context, userID string) ([]models.Invitation, error) {
	const op = "FetchPendingGroupInvitations"
	if err := checkUserID(op, "user", userID); err != nil {
		return nil, err
	}

	var groups []models.Group
	if err := s.find(ctx, "pending_members", userID, &groups); err != nil {
		return nil, txn.StoreError(op, err)
	}

	ctx, cancel := timeouts.Bound(ctx, timeouts.Long())
	defer cancel()

	out := make([]models.Invitation, 0, len(groups))
	for _, g := range groups {
		creator, err := s.profiles.ResolveProfile(ctx, g.CreatedBy)
		if err != nil {
			return nil, txn.StoreError(op, err)
		}
		out = append(out, models.Invitation{
			GroupID:        g.ID,
			GroupName:      g.Name,
			Description:    g.Description,
			Icon:           g.Icon,
			Color:          g.Color,
			CreatedBy:      g.CreatedBy,
			CreatorName:    creator.DisplayName,
			MemberCount:    len(g.Members),
			GroupCreatedAt: g.CreatedAt,
		})
	}
	return out, nil
}
