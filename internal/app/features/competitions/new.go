package competitions

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/formutil"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/domain/models"
)

const dateLayout = "2006-01-02"

type compFormData struct {
	formutil.Base
	Name        string
	Date        string
	Description string
}

// ServeNew renders the competition creation form.
// Authorization: RequireRole("admin") middleware in routes.go.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	data := compFormData{}
	formutil.SetBase(&data.Base, r, "New Competition", "/competitions")
	templates.Render(w, r, "competition_form", data)
}

// HandleCreate processes the competition creation form.
// Authorization: RequireRole("admin") middleware in routes.go.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "competition create: parse form", err, "Invalid form submission.", "/competitions")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	dateRaw := strings.TrimSpace(r.FormValue("date"))
	description := strings.TrimSpace(r.FormValue("description"))

	renderWithError := func(msg string) {
		data := compFormData{Name: name, Date: dateRaw, Description: description}
		formutil.SetBase(&data.Base, r, "New Competition", "/competitions")
		data.SetError(msg)
		templates.Render(w, r, "competition_form", data)
	}

	if name == "" {
		renderWithError("Competition name is required.")
		return
	}
	date, err := time.ParseInLocation(dateLayout, dateRaw, time.UTC)
	if err != nil {
		renderWithError("Enter the event date as YYYY-MM-DD.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	comp, err := h.Comps.Create(ctx, models.Competition{
		Name:        name,
		Description: description,
		Date:        date,
		Status:      models.CompetitionStatus(date, time.Now().UTC()),
	})
	if err != nil {
		renderWithError("Database error while creating the competition.")
		return
	}

	if actor, ok := authz.ActorCtx(r); ok {
		h.AuditLog.CompetitionCreated(ctx, r, actor.ID, comp.ID, actor.Role, comp.Name)
	}

	http.Redirect(w, r, "/competitions/"+comp.ID.Hex(), http.StatusSeeOther)
}
