package schools

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/policy/schoolpolicy"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/formutil"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// loadEditable loads the school and enforces the edit policy.
func (h *Handler) loadEditable(w http.ResponseWriter, r *http.Request) (models.School, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "school edit: bad id", err, "Invalid school id.", "/schools")
		return models.School{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	school, err := h.Schools.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "school edit: not found", "That school does not exist.", "/schools")
		return models.School{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "school edit: load", err, "A server error occurred.", "/schools")
		return models.School{}, false
	}

	if !schoolpolicy.CanEditSchool(r, school) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return models.School{}, false
	}
	return school, true
}

// ServeEdit renders the edit form for a school.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	school, ok := h.loadEditable(w, r)
	if !ok {
		return
	}

	data := schoolFormData{
		Name:     school.Name,
		Location: school.Location,
		About:    school.About,
		Action:   "/schools/" + school.ID.Hex() + "/edit",
	}
	formutil.SetBase(&data.Base, r, "Edit "+school.Name, "/schools/"+school.ID.Hex())
	templates.Render(w, r, "school_form", data)
}

// HandleEdit processes the edit form. A rename cascades into the
// denormalized school names on coach profiles and teams; those writes are
// best-effort and logged when they fail.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	school, ok := h.loadEditable(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "school edit: parse form", err, "Invalid form submission.", "/schools")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	location := strings.TrimSpace(r.FormValue("location"))
	about := strings.TrimSpace(r.FormValue("about"))

	renderWithError := func(msg string) {
		data := schoolFormData{
			Name:     name,
			Location: location,
			About:    about,
			Action:   "/schools/" + school.ID.Hex() + "/edit",
		}
		formutil.SetBase(&data.Base, r, "Edit "+school.Name, "/schools/"+school.ID.Hex())
		data.SetError(msg)
		templates.Render(w, r, "school_form", data)
	}

	if name == "" {
		renderWithError("School name is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Schools.Update(ctx, school.ID, name, location, about); err != nil {
		msg := "Database error while saving the school."
		if errors.Is(err, schoolstore.ErrDuplicateSchool) {
			msg = "A school with that name already exists."
		}
		renderWithError(msg)
		return
	}

	var changed []string
	if name != school.Name {
		changed = append(changed, "name")

		// Coach affiliation joins on the school name string; team rows cache
		// it too. Either update failing leaves stale display names only.
		if err := h.Coaches.UpdateSchoolName(ctx, school.Name, name); err != nil {
			h.Log.Warn("school rename: coach cascade failed",
				zap.String("school_id", school.ID.Hex()), zap.Error(err))
		}
		if err := h.Teams.UpdateSchoolName(ctx, school.ID, name); err != nil {
			h.Log.Warn("school rename: team cascade failed",
				zap.String("school_id", school.ID.Hex()), zap.Error(err))
		}
	}
	if location != school.Location {
		changed = append(changed, "location")
	}
	if about != school.About {
		changed = append(changed, "about")
	}

	if actor, ok := authz.ActorCtx(r); ok && len(changed) > 0 {
		h.AuditLog.SchoolUpdated(ctx, r, actor.ID, school.ID, actor.Role, strings.Join(changed, ", "))
	}

	http.Redirect(w, r, "/schools/"+school.ID.Hex(), http.StatusSeeOther)
}
