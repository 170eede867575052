// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/gatherhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter meant to be mounted at /groups/{id}/events.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeEventsList)
		pr.Post("/", h.HandleCreateEvent)
		pr.Get("/{eventID}", h.ServeEvent)
		pr.Patch("/{eventID}", h.HandleUpdateEvent)
		pr.Delete("/{eventID}", h.HandleDeleteEvent)
		pr.Put("/{eventID}/rsvp", h.HandleRSVP)
	})
	return r
}
