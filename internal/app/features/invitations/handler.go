// internal/app/features/invitations/handler.go
package invitations

import (
	"net/http"

	groupstore "github.com/dalemusser/gatherhub/internal/app/store/groups"
	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"github.com/dalemusser/gatherhub/internal/app/system/jsonresp"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler lists the caller's pending group invitations. Accepting and
// rejecting happen on the group itself (see the groups feature).
type Handler struct {
	Groups *groupstore.Store
	Log    *zap.Logger
}

func NewHandler(groups *groupstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Groups: groups, Log: logger}
}

// ServeInvitations handles GET /invitations.
func (h *Handler) ServeInvitations(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Groups.FetchPendingGroupInvitations(r.Context(), auth.CurrentUserID(r))
	if err != nil {
		jsonresp.Error(w, h.Log, "invitations.list", err)
		return
	}
	jsonresp.OK(w, http.StatusOK, invs)
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireSignedIn).Get("/", h.ServeInvitations)
	return r
}
