// internal/app/features/meetings/handler.go
package meetings

import (
	"net/http"

	meetingstore "github.com/dalemusser/gatherhub/internal/app/store/meetings"
	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"github.com/dalemusser/gatherhub/internal/app/system/jsonresp"
	"github.com/dalemusser/gatherhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the /meetings endpoints.
type Handler struct {
	Meetings *meetingstore.Store
	Log      *zap.Logger
}

func NewHandler(meetings *meetingstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Meetings: meetings, Log: logger}
}

// createRequest is MeetingInput plus the invitee list.
type createRequest struct {
	models.MeetingInput
	Invited []string `json:"invited"`
}

type rsvpRequest struct {
	Status models.ParticipationStatus `json:"status"`
}

// ServeMeetingsList handles GET /meetings.
func (h *Handler) ServeMeetingsList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Meetings.FetchUserMeetings(r.Context(), auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "meetings.list", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, list)
}

// HandleCreateMeeting handles POST /meetings.
func (h *Handler) HandleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := jsonresp.Decode(w, r, &req); err != nil {
		jsonresp.Error(w, h.Log, "meetings.create", err)
		return
	}

	m, err := h.Meetings.CreateMeeting(r.Context(), req.MeetingInput, req.Invited, auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "meetings.create", err)
		return
	}
	jsonresp.OK(w, http.StatusCreated, m)
}

// ServeMeeting handles GET /meetings/{id}.
func (h *Handler) ServeMeeting(w http.ResponseWriter, r *http.Request) {
	v, err := h.Meetings.GetMeeting(r.Context(), chi.URLParam(r, "id"), auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "meetings.get", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, v)
}

// HandleUpdateMeeting handles PATCH /meetings/{id}.
func (h *Handler) HandleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	var patch models.MeetingPatch
	if err := jsonresp.Decode(w, r, &patch); err != nil {
		jsonresp.Error(w, h.Log, "meetings.update", err)
		return
	}

	m, err := h.Meetings.UpdateMeeting(r.Context(), chi.URLParam(r, "id"), patch, auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "meetings.update", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, m)
}

// HandleDeleteMeeting handles DELETE /meetings/{id}.
func (h *Handler) HandleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	if err := h.Meetings.DeleteMeeting(r.Context(), chi.URLParam(r, "id"), auth.CurrentUserID(r)); err != nil {
		jsonresp.Error(w, h.Log, "meetings.delete", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleJoin handles POST /meetings/{id}/join. Joining twice is not an error.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	m, err := h.Meetings.JoinMeeting(r.Context(), chi.URLParam(r, "id"), auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "meetings.join", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, m)
}

// HandleRSVP handles PUT /meetings/{id}/rsvp.
func (h *Handler) HandleRSVP(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
	if err := jsonresp.Decode(w, r, &req); err != nil {
		jsonresp.Error(w, h.Log, "meetings.rsvp", err)
		return
	}

	id, userID := chi.URLParam(r, "id"), auth.CurrentUserID(r)
	if err := h.Meetings.RespondToMeeting(r.Context(), id, userID, req.Status); err != nil {
		jsonresp.Error(w, h.Log, "meetings.rsvp", err)
		return
	}
	v, err := h.Meetings.GetMeeting(r.Context(), id, userID)
	if err != nil {
		jsonresp.Error(w, h.Log, "meetings.rsvp", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, v)
}
