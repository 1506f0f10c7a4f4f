package coaches

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type detailData struct {
	viewdata.BaseVM
	Coach         models.CoachProfile
	Teams         []models.Team
	Contributions int64
}

// ServeDetail handles GET /coaches/{id}. The page is public; it shows the
// coach profile, the teams they coach, and their contribution count.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "coach detail: bad id", err, "Invalid coach id.", "/coaches")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	coach, err := h.Coaches.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "coach detail: not found", "That coach does not exist.", "/coaches")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "coach detail: load", err, "A server error occurred.", "/coaches")
		return
	}

	data := detailData{
		BaseVM: viewdata.NewBaseVM(r, coach.Name, "/coaches"),
		Coach:  coach,
	}

	if data.Teams, err = h.Teams.FindByCoach(ctx, coach.ID); err != nil {
		h.Log.Warn("coach detail: load teams", zap.String("coach_id", coach.ID.Hex()), zap.Error(err))
	}
	if u, err := h.Users.GetByID(ctx, coach.ID); err == nil {
		data.Contributions = u.Contributions
	}

	templates.Render(w, r, "coach_detail", data)
}
