package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/robacademy/robohub/internal/app/registry"
	"github.com/robacademy/robohub/internal/app/system/auth"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type profileViewData struct {
	viewdata.BaseVM
	Account     models.User
	SchoolID    string
	CoachExtras *models.CoachProfile
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /profile                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login?return=/profile", http.StatusSeeOther)
		return
	}

	oid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile: bad session user id", err, "Invalid session.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Reg.GetAccountWithSchool(ctx, oid)
	if errors.Is(err, registry.ErrNotFound) {
		// Stale session for a deleted account.
		http.Redirect(w, r, "/logout", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: load account", err, "A server error occurred.", "/")
		return
	}

	data := profileViewData{
		BaseVM:  viewdata.NewBaseVM(r, "Your Profile", "/dashboard"),
		Account: acct.User,
	}
	if acct.SchoolID != nil {
		data.SchoolID = acct.SchoolID.Hex()
	}

	if acct.User.Role == models.RoleCoach {
		if cp, err := h.Coaches.GetByID(ctx, oid); err == nil {
			data.CoachExtras = &cp
		}
	}

	templates.Render(w, r, "profile", data)
}
