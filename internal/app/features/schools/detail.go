package schools

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/policy/schoolpolicy"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type detailData struct {
	viewdata.BaseVM
	School  models.School
	Coaches []models.CoachProfile
	Teams   []models.Team
	CanEdit bool
}

// ServeDetail handles GET /schools/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "school detail: bad id", err, "Invalid school id.", "/schools")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	school, err := h.Schools.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "school detail: not found", "That school does not exist.", "/schools")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "school detail: load", err, "A server error occurred.", "/schools")
		return
	}

	data := detailData{
		BaseVM:  viewdata.NewBaseVM(r, school.Name, "/schools"),
		School:  school,
		CanEdit: schoolpolicy.CanEditSchool(r, school),
	}

	if data.Coaches, err = h.Reg.ListCoachesForSchool(ctx, school.Name); err != nil {
		h.Log.Warn("school detail: coaches", zap.Error(err))
	}
	if data.Teams, err = h.Teams.FindBySchool(ctx, school.ID); err != nil {
		h.Log.Warn("school detail: teams", zap.Error(err))
	}

	templates.Render(w, r, "school_detail", data)
}
