package home

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/robacademy/robohub/internal/app/registry"
	compstore "github.com/robacademy/robohub/internal/app/store/competitions"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
	Reg *registry.Registry
}

func NewHandler(db *mongo.Database, logger *zap.Logger, reg *registry.Registry) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
		Reg: reg,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := struct {
		viewdata.BaseVM
		TopContributors []models.User
		Upcoming        []models.Competition
	}{
		BaseVM: viewdata.NewBaseVM(r, "Welcome", "/"),
	}

	// Both panels are decorative. Serve the page even when a lookup fails.
	if top, err := h.Reg.TopContributors(ctx, 5); err != nil {
		h.Log.Warn("home: top contributors lookup failed", zap.Error(err))
	} else {
		data.TopContributors = top
	}

	comps := compstore.New(h.DB)
	upcoming, err := comps.Find(ctx,
		bson.M{"status": models.CompetitionUpcoming},
		options.Find().
			SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}).
			SetLimit(3))
	if err != nil {
		h.Log.Warn("home: upcoming competitions lookup failed", zap.Error(err))
	} else {
		data.Upcoming = upcoming
	}

	templates.Render(w, r, "home", data)
}
