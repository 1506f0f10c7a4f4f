package community

import (
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// The feed itself is public.
	r.Get("/", h.ServeFeed)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/new", h.ServeNew)
		r.Post("/new", h.HandleCreate)
		r.Post("/{id}/like", h.HandleLike)
		r.Post("/{id}/comment", h.HandleComment)
		// Delete checks the author-or-admin policy in the handler.
		r.Post("/{id}/delete", h.HandleDelete)

		r.Group(func(r chi.Router) {
			r.Use(sm.RequireRole("admin"))
			r.Get("/pending", h.ServeQueue)
			r.Post("/{id}/approve", h.HandleApprove)
		})
	})

	return r
}
