package competitions

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/robacademy/robohub/internal/app/policy/schoolpolicy"
	compstore "github.com/robacademy/robohub/internal/app/store/competitions"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listEntry struct {
	models.Competition

	// DerivedStatus is computed from the event date at render time rather
	// than trusting the stored value.
	DerivedStatus string
}

type listData struct {
	viewdata.BaseVM
	Q         string
	Upcoming  []listEntry
	Completed []listEntry
	CanCreate bool
}

// ServeList handles GET /competitions. The calendar is public; events are
// split into upcoming and completed by date.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := query.Search(r, "q")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	comps, err := h.Comps.Find(ctx, compstore.SearchFilter(q),
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list competitions failed", err, "Unable to load competitions.", "/")
		return
	}

	now := time.Now().UTC()
	data := listData{
		BaseVM:    viewdata.NewBaseVM(r, "Competitions", "/"),
		Q:         q,
		CanCreate: schoolpolicy.CanApproveRegistrations(r),
	}
	for _, c := range comps {
		entry := listEntry{Competition: c, DerivedStatus: models.CompetitionStatus(c.Date, now)}
		if entry.DerivedStatus == models.CompetitionUpcoming {
			data.Upcoming = append(data.Upcoming, entry)
		} else {
			data.Completed = append(data.Completed, entry)
		}
	}

	templates.Render(w, r, "competitions_list", data)
}
