package assist

import (
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeWorkspace)
	r.Post("/chat", h.HandleChat)
	r.Post("/post", h.HandleDraftPost)
	r.Post("/image", h.HandleImage)
	return r
}
