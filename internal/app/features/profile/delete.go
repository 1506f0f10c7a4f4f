package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/robacademy/robohub/internal/app/registry"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile/delete – self-service account deletion                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	su, oid, ok := h.currentAccount(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor := authz.Actor{ID: oid, Role: su.Role}
	res, err := h.Reg.DeleteAccount(ctx, actor, oid)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		// Already gone; fall through to clearing the session.
	case err != nil:
		h.ErrLog.LogServerError(w, r, "profile delete: delete account", err,
			"Your account could not be deleted. Please try again.", "/profile")
		return
	}

	for _, warning := range res.Warnings {
		h.Log.Warn("profile delete: secondary write failed",
			zap.String("op", warning.Op), zap.Error(warning.Err))
	}

	h.AuditLog.UserDeleted(ctx, r, oid, oid, su.Role, su.Role)

	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Error("profile delete: clear session", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
