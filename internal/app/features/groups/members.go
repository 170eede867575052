// internal/app/features/groups/members.go
package groups

import (
	"net/http"

	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"github.com/dalemusser/gatherhub/internal/app/system/jsonresp"
	"github.com/go-chi/chi/v5"
)

type inviteRequest struct {
	UserID string `json:"user_id"`
}

// HandleInvite handles POST /groups/{id}/invitations with {"user_id": "..."}.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := jsonresp.Decode(w, r, &req); err != nil {
		jsonresp.Error(w, h.Log, "groups.invite", err)
		return
	}

	err := h.Groups.InviteToGroup(r.Context(), chi.URLParam(r, "id"), req.UserID, auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "groups.invite", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, ok{OK: true})
}

// HandleAcceptInvitation handles POST /groups/{id}/invitations/accept.
func (h *Handler) HandleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	if err := h.Groups.AcceptGroupInvitation(r.Context(), chi.URLParam(r, "id"), auth.CurrentUserID(r)); err != nil {
		jsonresp.Error(w, h.Log, "groups.accept", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, ok{OK: true})
}

// HandleRejectInvitation handles POST /groups/{id}/invitations/reject.
func (h *Handler) HandleRejectInvitation(w http.ResponseWriter, r *http.Request) {
	if err := h.Groups.RejectGroupInvitation(r.Context(), chi.URLParam(r, "id"), auth.CurrentUserID(r)); err != nil {
		jsonresp.Error(w, h.Log, "groups.reject", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, ok{OK: true})
}

// HandleLeave handles POST /groups/{id}/leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.Groups.LeaveGroup(r.Context(), chi.URLParam(r, "id"), auth.CurrentUserID(r)); err != nil {
		jsonresp.Error(w, h.Log, "groups.leave", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, ok{OK: true})
}

// HandleRemoveMember handles DELETE /groups/{id}/members/{userID}.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.Groups.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID"), auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "groups.remove_member", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, ok{OK: true})
}
