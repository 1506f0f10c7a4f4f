package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole("admin", "school_admin"))
		r.Get("/", h.ServeList)
	})

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole("admin"))
		r.Get("/cleanup", h.ServeCleanupQueue)
		r.Post("/cleanup/done", h.HandleCleanupDone)
		r.Post("/{id}/promote-coach", h.HandlePromoteCoach)
		r.Post("/{id}/demote-coach", h.HandleDemoteCoach)
		r.Post("/{id}/promote-school-admin", h.HandlePromoteSchoolAdmin)
		r.Post("/{id}/demote-school-admin", h.HandleDemoteSchoolAdmin)
	})

	// Detail and delete do their own policy checks: school admins may view
	// their school's accounts, and anyone may delete themselves.
	r.Get("/{id}", h.ServeDetail)
	r.Post("/{id}/delete", h.HandleDelete)

	return r
}
