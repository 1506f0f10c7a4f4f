package competitions

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/policy/schoolpolicy"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type detailData struct {
	viewdata.BaseVM
	Competition   models.Competition
	DerivedStatus string
	Approved      []models.Registration
	Pending       []models.Registration
	CanApprove    bool

	// MyTeams are the signed-in coach's teams, offered in the
	// registration picker for upcoming events.
	MyTeams []models.Team
}

func (h *Handler) loadCompetition(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Competition, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "competition: bad id", err, "Invalid competition id.", "/competitions")
		return models.Competition{}, false
	}

	comp, err := h.Comps.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "competition: not found", "That competition does not exist.", "/competitions")
		return models.Competition{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "competition: load", err, "A server error occurred.", "/competitions")
		return models.Competition{}, false
	}
	return comp, true
}

// ServeDetail handles GET /competitions/{id}. The page is public; coaches
// additionally see a registration picker and admins the pending queue.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	comp, ok := h.loadCompetition(ctx, w, r)
	if !ok {
		return
	}

	data := detailData{
		BaseVM:        viewdata.NewBaseVM(r, comp.Name, "/competitions"),
		Competition:   comp,
		DerivedStatus: models.CompetitionStatus(comp.Date, time.Now().UTC()),
		CanApprove:    schoolpolicy.CanApproveRegistrations(r),
	}

	var err error
	if data.Approved, err = h.Comps.ListByStatus(ctx, comp.ID, models.RegistrationApproved); err != nil {
		h.Log.Warn("competition detail: approved registrations", zap.String("competition_id", comp.ID.Hex()), zap.Error(err))
	}
	if data.CanApprove {
		if data.Pending, err = h.Comps.ListPending(ctx, comp.ID); err != nil {
			h.Log.Warn("competition detail: pending registrations", zap.String("competition_id", comp.ID.Hex()), zap.Error(err))
		}
	}
	if authz.IsCoach(r) && data.DerivedStatus == models.CompetitionUpcoming {
		_, _, userID, _ := authz.UserCtx(r)
		if data.MyTeams, err = h.Teams.FindByCoach(ctx, userID); err != nil {
			h.Log.Warn("competition detail: coach teams", zap.String("coach_id", userID.Hex()), zap.Error(err))
		}
	}

	templates.Render(w, r, "competition_detail", data)
}
