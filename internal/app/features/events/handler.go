// internal/app/features/events/handler.go
package events

import (
	"net/http"

	groupstore "github.com/dalemusser/gatherhub/internal/app/store/groups"
	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"github.com/dalemusser/gatherhub/internal/app/system/jsonresp"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the events embedded in a group. Routes are mounted under
// /groups/{id}/events, so the group id comes from the parent pattern.
type Handler struct {
	Groups *groupstore.Store
	Log    *zap.Logger
}

func NewHandler(groups *groupstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Groups: groups, Log: logger}
}

type rsvpRequest struct {
	Status models.ParticipationStatus `json:"status"`
}

// ServeEventsList handles GET /groups/{id}/events.
func (h *Handler) ServeEventsList(w http.ResponseWriter, r *http.Request) {
	events, err := h.Groups.ListEvents(r.Context(), chi.URLParam(r, "id"), auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "events.list", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, events)
}

// HandleCreateEvent handles POST /groups/{id}/events.
func (h *Handler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if err := jsonresp.Decode(w, r, &in); err != nil {
		jsonresp.Error(w, h.Log, "events.create", err)
		return
	}

	e, err := h.Groups.CreateEvent(r.Context(), chi.URLParam(r, "id"), in, auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "events.create", err)
		return
	}
	jsonresp.OK(w, http.StatusCreated, models.EventView{Event: e, Counts: e.CountByStatus()})
}

// ServeEvent handles GET /groups/{id}/events/{eventID}.
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	v, err := h.Groups.GetEvent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "eventID"), auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "events.get", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, v)
}

// HandleUpdateEvent handles PATCH /groups/{id}/events/{eventID}.
func (h *Handler) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var patch models.EventPatch
	if err := jsonresp.Decode(w, r, &patch); err != nil {
		jsonresp.Error(w, h.Log, "events.update", err)
		return
	}

	e, err := h.Groups.UpdateEvent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "eventID"), patch, auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "events.update", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, models.EventView{Event: e, Counts: e.CountByStatus()})
}

// HandleDeleteEvent handles DELETE /groups/{id}/events/{eventID}.
func (h *Handler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	err := h.Groups.DeleteEvent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "eventID"), auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "events.delete", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleRSVP handles PUT /groups/{id}/events/{eventID}/rsvp with
// {"status": "accepted" | "declined" | "pending"} and returns the new tally.
func (h *Handler) HandleRSVP(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
	if err := jsonresp.Decode(w, r, &req); err != nil {
		jsonresp.Error(w, h.Log, "events.rsvp", err)
		return
	}

	groupID, eventID, userID := chi.URLParam(r, "id"), chi.URLParam(r, "eventID"), auth.CurrentUserID(r)
	if err := h.Groups.RespondToEvent(r.Context(), groupID, eventID, userID, req.Status); err != nil {
		jsonresp.Error(w, h.Log, "events.rsvp", err)
		return
	}

	v, err := h.Groups.GetEvent(r.Context(), groupID, eventID, userID)
	if err != nil {
		jsonresp.Error(w, h.Log, "events.rsvp", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, v)
}
