package teams

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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type detailData struct {
	viewdata.BaseVM
	Team      models.Team
	School    models.School
	Members   []models.User
	CanManage bool
}

// loadTeam reads {id} and fetches the team, writing the error page itself
// when the id is malformed or the team is gone.
func (h *Handler) loadTeam(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Team, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "team: bad id", err, "Invalid team id.", "/schools")
		return models.Team{}, false
	}

	team, err := h.Teams.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "team: not found", "That team does not exist.", "/schools")
		return models.Team{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "team: load", err, "A server error occurred.", "/schools")
		return models.Team{}, false
	}
	return team, true
}

// ServeDetail handles GET /teams/{id}. The page is public; management
// controls only show for users the policy allows.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, ok := h.loadTeam(ctx, w, r)
	if !ok {
		return
	}

	data := detailData{
		BaseVM: viewdata.NewBaseVM(r, team.Name, "/schools/"+team.SchoolID.Hex()),
		Team:   team,
	}

	school, err := h.Schools.GetByID(ctx, team.SchoolID)
	if err != nil {
		h.Log.Warn("team detail: load school", zap.String("team_id", team.ID.Hex()), zap.Error(err))
	} else {
		data.School = school
		data.CanManage = schoolpolicy.CanManageTeams(r, school)
	}

	if len(team.MemberIDs) > 0 {
		members, err := h.Users.Find(ctx, bson.M{"_id": bson.M{"$in": team.MemberIDs}})
		if err != nil {
			h.Log.Warn("team detail: load members", zap.String("team_id", team.ID.Hex()), zap.Error(err))
		}
		data.Members = members
	}

	templates.Render(w, r, "team_detail", data)
}
