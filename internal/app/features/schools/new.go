package schools

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/formutil"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/domain/models"
)

type schoolFormData struct {
	formutil.Base
	Name     string
	Location string
	About    string

	// Action distinguishes the create and edit form posts.
	Action string
}

// ServeNew renders the "New School" form.
// Authorization: RequireRole("admin") middleware in routes.go.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	data := schoolFormData{Action: "/schools/new"}
	formutil.SetBase(&data.Base, r, "New School", "/schools")
	templates.Render(w, r, "school_form", data)
}

// HandleCreate processes the New School form submission.
// Authorization: RequireRole("admin") middleware in routes.go.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "school create: parse form", err, "Invalid form submission.", "/schools")
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
			Action:   "/schools/new",
		}
		formutil.SetBase(&data.Base, r, "New School", "/schools")
		data.SetError(msg)
		templates.Render(w, r, "school_form", data)
	}

	if name == "" {
		renderWithError("School name is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	school, err := h.Schools.Create(ctx, models.School{
		Name:     name,
		Location: location,
		About:    about,
	})
	if err != nil {
		msg := "Database error while creating the school."
		if errors.Is(err, schoolstore.ErrDuplicateSchool) {
			msg = "A school with that name already exists."
		}
		renderWithError(msg)
		return
	}

	if actor, ok := authz.ActorCtx(r); ok {
		h.AuditLog.SchoolCreated(ctx, r, actor.ID, school.ID, actor.Role, school.Name)
	}

	http.Redirect(w, r, "/schools/"+school.ID.Hex(), http.StatusSeeOther)
}
