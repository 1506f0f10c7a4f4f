package schools

import (
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public directory.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Group(func(r chi.Router) {
			r.Use(sm.RequireRole("admin"))
			r.Get("/new", h.ServeNew)
			r.Post("/new", h.HandleCreate)
		})
		// Edit checks its own policy: admins or the school's bound admin.
		r.Get("/{id}/edit", h.ServeEdit)
		r.Post("/{id}/edit", h.HandleEdit)
	})

	return r
}
