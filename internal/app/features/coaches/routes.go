package coaches

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the coach directory. All pages are public.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)
	return r
}
