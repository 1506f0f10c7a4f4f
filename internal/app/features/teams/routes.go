package teams

import (
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public team page.
	r.Get("/{id}", h.ServeDetail)

	// Management checks the per-school policy inside each handler.
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/new", h.ServeNew)
		r.Post("/new", h.HandleCreate)
		r.Get("/{id}/roster", h.ServeRoster)
		r.Post("/{id}/roster", h.HandleRoster)
		r.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}
