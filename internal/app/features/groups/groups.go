// internal/app/features/groups/groups.go
package groups

import (
	"net/http"

	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"github.com/dalemusser/gatherhub/internal/app/system/jsonresp"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// ServeGroupsList handles GET /groups: every group the caller belongs to.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Groups.FetchUserGroups(r.Context(), auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "groups.list", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, groups)
}

// HandleCreateGroup handles POST /groups.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var in models.GroupInput
	if err := jsonresp.Decode(w, r, &in); err != nil {
		jsonresp.Error(w, h.Log, "groups.create", err)
		return
	}

	g, err := h.Groups.CreateGroup(r.Context(), in, auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "groups.create", err)
		return
	}
	jsonresp.OK(w, http.StatusCreated, g)
}

// ServeGroup handles GET /groups/{id}.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	v, err := h.Groups.GetGroup(r.Context(), chi.URLParam(r, "id"), auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "groups.get", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, v)
}

// HandleUpdateGroup handles PATCH /groups/{id}. Absent fields are left alone.
func (h *Handler) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var patch models.GroupPatch
	if err := jsonresp.Decode(w, r, &patch); err != nil {
		jsonresp.Error(w, h.Log, "groups.update", err)
		return
	}

	g, err := h.Groups.UpdateGroup(r.Context(), chi.URLParam(r, "id"), patch, auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "groups.update", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, g)
}

// HandleDeleteGroup handles DELETE /groups/{id} (admin or creator).
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.Groups.DeleteGroup(r.Context(), chi.URLParam(r, "id"), auth.CurrentUserID(r)); err != nil {
		jsonresp.Error(w, h.Log, "groups.delete", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, ok{OK: true})
}
