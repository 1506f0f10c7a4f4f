package competitions

import (
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public calendar.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		// Registration checks the per-team policy in the handler.
		r.Post("/{id}/register", h.HandleRegister)

		r.Group(func(r chi.Router) {
			r.Use(sm.RequireRole("admin"))
			r.Get("/new", h.ServeNew)
			r.Post("/new", h.HandleCreate)
			r.Get("/pending", h.ServePending)
			r.Post("/{id}/registrations/{regID}/approve", h.HandleApprove)
		})
	})

	return r
}
