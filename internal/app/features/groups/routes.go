// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /groups subrouter. Event routes are mounted under
// /{id}/events by the caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeGroupsList)
		pr.Post("/", h.HandleCreateGroup)

		pr.Get("/{id}", h.ServeGroup)
		pr.Patch("/{id}", h.HandleUpdateGroup)
		pr.Delete("/{id}", h.HandleDeleteGroup)

		// membership
		pr.Post("/{id}/invitations", h.HandleInvite)
		pr.Post("/{id}/invitations/accept", h.HandleAcceptInvitation)
		pr.Post("/{id}/invitations/reject", h.HandleRejectInvitation)
		pr.Post("/{id}/leave", h.HandleLeave)
		pr.Delete("/{id}/members/{userID}", h.HandleRemoveMember)
	})

	return r
}
