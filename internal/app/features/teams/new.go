package teams

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/robacademy/robohub/internal/app/policy/schoolpolicy"
	teamstore "github.com/robacademy/robohub/internal/app/store/teams"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/formutil"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type teamFormData struct {
	formutil.Base
	Name    string
	School  models.School
	Coaches []models.User

	// CoachID is the selected coach when the creator is not a coach.
	CoachID string
}

// loadManagedSchool resolves the ?school= (or form school_id) parameter and
// enforces the team management policy for it.
func (h *Handler) loadManagedSchool(ctx context.Context, w http.ResponseWriter, r *http.Request, raw string) (models.School, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "team new: bad school id", err, "Invalid school id.", "/schools")
		return models.School{}, false
	}

	school, err := h.Schools.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "team new: school not found", "That school does not exist.", "/schools")
		return models.School{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team new: load school", err, "A server error occurred.", "/schools")
		return models.School{}, false
	}

	if !schoolpolicy.CanManageTeams(r, school) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return models.School{}, false
	}
	return school, true
}

// coachChoices lists the school's coach accounts for the coach picker.
// Coaches creating their own team never see the picker.
func (h *Handler) coachChoices(ctx context.Context, school models.School) []models.User {
	coaches, err := h.Users.FindBySchool(ctx, school.Name, models.RoleCoach)
	if err != nil {
		h.Log.Warn("team new: load coaches", zap.String("school", school.Name), zap.Error(err))
		return nil
	}
	return coaches
}

// ServeNew renders the team creation form for GET /teams/new?school={id}.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	school, ok := h.loadManagedSchool(ctx, w, r, r.URL.Query().Get("school"))
	if !ok {
		return
	}

	data := teamFormData{School: school}
	if !authz.IsCoach(r) {
		data.Coaches = h.coachChoices(ctx, school)
	}
	formutil.SetBase(&data.Base, r, "New Team", "/schools/"+school.ID.Hex())
	templates.Render(w, r, "team_form", data)
}

// HandleCreate processes the team creation form. The creating coach becomes
// the team's coach; school admins and platform admins pick one.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "team create: parse form", err, "Invalid form submission.", "/schools")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	school, ok := h.loadManagedSchool(ctx, w, r, r.FormValue("school_id"))
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	coachIDRaw := r.FormValue("coach_id")

	renderWithError := func(msg string) {
		data := teamFormData{Name: name, School: school, CoachID: coachIDRaw}
		if !authz.IsCoach(r) {
			data.Coaches = h.coachChoices(ctx, school)
		}
		formutil.SetBase(&data.Base, r, "New Team", "/schools/"+school.ID.Hex())
		data.SetError(msg)
		templates.Render(w, r, "team_form", data)
	}

	if name == "" {
		renderWithError("Team name is required.")
		return
	}

	role, _, userID, _ := authz.UserCtx(r)

	coachID := userID
	if role != models.RoleCoach {
		var err error
		if coachID, err = primitive.ObjectIDFromHex(coachIDRaw); err != nil {
			renderWithError("Pick a coach for the team.")
			return
		}
	}

	coach, err := h.Users.GetByID(ctx, coachID)
	if err != nil || coach.Role != models.RoleCoach {
		renderWithError("The selected coach account is not a coach.")
		return
	}

	team, err := h.Teams.Create(ctx, models.Team{
		Name:       name,
		SchoolID:   school.ID,
		SchoolName: school.Name,
		CoachID:    coach.ID,
		CoachName:  coach.FullName,
		CreatedBy:  userID,
	})
	if err != nil {
		msg := "Database error while creating the team."
		if errors.Is(err, teamstore.ErrDuplicateTeam) {
			msg = "A team with that name already exists at this school."
		}
		renderWithError(msg)
		return
	}

	// The counter on the school row is display data; a failed bump just
	// leaves it stale.
	if err := h.Schools.IncTeams(ctx, school.ID, 1); err != nil {
		h.Log.Warn("team create: bump school counter",
			zap.String("school_id", school.ID.Hex()), zap.Error(err))
	}

	if actor, ok := authz.ActorCtx(r); ok {
		h.AuditLog.TeamCreated(ctx, r, actor.ID, team.ID, &school.ID, actor.Role, team.Name)
	}

	http.Redirect(w, r, "/teams/"+team.ID.Hex(), http.StatusSeeOther)
}
