package profile

import (
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeProfile)
	r.Get("/edit", h.ServeEdit)
	r.Post("/edit", h.HandleEditPost)
	r.Post("/delete", h.HandleDeletePost)
	return r
}
