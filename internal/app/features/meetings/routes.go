// internal/app/features/meetings/routes.go
package meetings

import (
	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeMeetingsList)
		pr.Post("/", h.HandleCreateMeeting)
		pr.Get("/{id}", h.ServeMeeting)
		pr.Patch("/{id}", h.HandleUpdateMeeting)
		pr.Delete("/{id}", h.HandleDeleteMeeting)
		pr.Post("/{id}/join", h.HandleJoin)
		pr.Put("/{id}/rsvp", h.HandleRSVP)
	})
	return r
}
