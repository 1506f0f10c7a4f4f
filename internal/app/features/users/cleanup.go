package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

type cleanupData struct {
	viewdata.BaseVM
	Tasks []models.IdentityCleanupTask
}

// ServeCleanupQueue handles GET /users/cleanup, the operator queue of
// external identities still to remove after account deletion.
func (h *Handler) ServeCleanupQueue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tasks, err := h.Cleanup.ListPending(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "cleanup queue: list", err, "Unable to load the cleanup queue.", "/users")
		return
	}

	templates.Render(w, r, "users_cleanup", cleanupData{
		BaseVM: viewdata.NewBaseVM(r, "Identity Cleanup Queue", "/users"),
		Tasks:  tasks,
	})
}

// HandleCleanupDone handles POST /users/cleanup/done with the task token.
func (h *Handler) HandleCleanupDone(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "cleanup done: parse form", err, "Invalid form data.", "/users/cleanup")
		return
	}
	token := r.FormValue("token")
	if token == "" {
		h.ErrLog.LogBadRequest(w, r, "cleanup done: missing token", nil, "Missing task token.", "/users/cleanup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Cleanup.MarkDone(ctx, token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrLog.LogNotFound(w, r, "cleanup done: unknown token", "No open task has that token.", "/users/cleanup")
			return
		}
		h.ErrLog.LogServerError(w, r, "cleanup done: mark", err, "The task could not be closed.", "/users/cleanup")
		return
	}

	http.Redirect(w, r, "/users/cleanup", http.StatusSeeOther)
}
