package teams

import (
	"context"
	"net/http"

	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete removes the team and decrements the school's team counter.
// POST /teams/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, school, ok := h.loadManagedTeam(ctx, w, r)
	if !ok {
		return
	}

	deleted, err := h.Teams.Delete(ctx, team.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team delete", err, "Unable to delete the team.", "/teams/"+team.ID.Hex())
		return
	}

	// Only decrement when this request actually removed the row, so a
	// double submit cannot drive the counter negative.
	if deleted {
		if err := h.Schools.IncTeams(ctx, school.ID, -1); err != nil {
			h.Log.Warn("team delete: bump school counter",
				zap.String("school_id", school.ID.Hex()), zap.Error(err))
		}
		if actor, ok := authz.ActorCtx(r); ok {
			h.AuditLog.TeamDeleted(ctx, r, actor.ID, team.ID, &school.ID, actor.Role, team.Name)
		}
	}

	dest := "/schools/" + school.ID.Hex()
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
