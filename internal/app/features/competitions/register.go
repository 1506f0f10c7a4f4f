package competitions

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/robacademy/robohub/internal/app/policy/schoolpolicy"
	compstore "github.com/robacademy/robohub/internal/app/store/competitions"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleRegister enters a team for a competition. The entry starts Pending
// and only counts toward the competition once an admin approves it.
// POST /competitions/{id}/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "register team: parse form", err, "Invalid form submission.", "/competitions")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	comp, ok := h.loadCompetition(ctx, w, r)
	if !ok {
		return
	}
	dest := "/competitions/" + comp.ID.Hex()

	if models.CompetitionStatus(comp.Date, time.Now().UTC()) != models.CompetitionUpcoming {
		h.ErrLog.LogBadRequest(w, r, "register team: event over", nil, "Registration for this competition has closed.", dest)
		return
	}

	teamID, err := primitive.ObjectIDFromHex(r.FormValue("team_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "register team: bad team id", err, "Invalid team id.", dest)
		return
	}

	team, err := h.Teams.GetByID(ctx, teamID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "register team: team not found", "That team does not exist.", dest)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register team: load team", err, "A server error occurred.", dest)
		return
	}

	if !schoolpolicy.CanRegisterTeam(r, team) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	_, _, userID, _ := authz.UserCtx(r)
	_, err = h.Comps.Register(ctx, models.Registration{
		CompetitionID: comp.ID,
		TeamID:        team.ID,
		TeamName:      team.Name,
		CoachName:     team.CoachName,
		Status:        models.RegistrationPending,
		RegisteredBy:  userID,
	})
	if errors.Is(err, compstore.ErrAlreadyRegistered) {
		h.ErrLog.LogBadRequest(w, r, "register team: duplicate", err, "That team is already registered for this competition.", dest)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register team", err, "Unable to register the team.", dest)
		return
	}

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
