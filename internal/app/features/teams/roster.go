package teams

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/robacademy/robohub/internal/app/policy/schoolpolicy"
	"github.com/robacademy/robohub/internal/app/system/formutil"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type rosterData struct {
	formutil.Base
	Team     models.Team
	Students []models.User
	OnTeam   map[primitive.ObjectID]bool
}

// loadManagedTeam fetches the team plus its school and enforces the team
// management policy.
func (h *Handler) loadManagedTeam(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Team, models.School, bool) {
	team, ok := h.loadTeam(ctx, w, r)
	if !ok {
		return models.Team{}, models.School{}, false
	}

	school, err := h.Schools.GetByID(ctx, team.SchoolID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team: load school", err, "A server error occurred.", "/schools")
		return models.Team{}, models.School{}, false
	}

	if !schoolpolicy.CanManageTeams(r, school) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return models.Team{}, models.School{}, false
	}
	return team, school, true
}

// ServeRoster renders the roster editor: the school's students with the
// current members pre-checked.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, school, ok := h.loadManagedTeam(ctx, w, r)
	if !ok {
		return
	}

	students, err := h.Users.FindBySchool(ctx, school.Name, models.RoleStudent)
	if err != nil {
		h.Log.Warn("roster: load students", zap.String("team_id", team.ID.Hex()), zap.Error(err))
	}

	onTeam := make(map[primitive.ObjectID]bool, len(team.MemberIDs))
	for _, id := range team.MemberIDs {
		onTeam[id] = true
	}

	data := rosterData{Team: team, Students: students, OnTeam: onTeam}
	formutil.SetBase(&data.Base, r, "Roster: "+team.Name, "/teams/"+team.ID.Hex())
	templates.Render(w, r, "team_roster", data)
}

// HandleRoster replaces the team's member list with the submitted
// selection. Ids that fail to parse are skipped.
func (h *Handler) HandleRoster(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "roster: parse form", err, "Invalid form submission.", "/schools")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, _, ok := h.loadManagedTeam(ctx, w, r)
	if !ok {
		return
	}

	var memberIDs []primitive.ObjectID
	for _, raw := range r.Form["member_ids"] {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			continue
		}
		memberIDs = append(memberIDs, id)
	}

	if err := h.Teams.SetMembers(ctx, team.ID, memberIDs); err != nil {
		h.ErrLog.LogServerError(w, r, "roster: save members", err, "Unable to save the roster.", "/teams/"+team.ID.Hex())
		return
	}

	http.Redirect(w, r, "/teams/"+team.ID.Hex(), http.StatusSeeOther)
}
