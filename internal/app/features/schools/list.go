package schools

import (
	"context"
	"maps"
	"net/http"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/robacademy/robohub/internal/app/policy/schoolpolicy"
	"github.com/robacademy/robohub/internal/app/system/paging"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listItem struct {
	ID       primitive.ObjectID `bson:"_id"`
	Name     string             `bson:"name"`
	NameCI   string             `bson:"name_ci"`
	Location string             `bson:"location"`
	Coach    string             `bson:"coach"`
	Teams    int64              `bson:"teams"`
}

type listData struct {
	viewdata.BaseVM
	Q         string
	Items     []listItem
	CanCreate bool

	Shown      int
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
	RangeStart int
	RangeEnd   int
	PrevStart  int
	NextStart  int
}

// ServeList handles GET /schools (with optional ?q= search). The directory
// is public. It supports HTMX partial refresh of the table when
// HX-Target="schools-table-wrap".
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := query.Search(r, "q")
	after := query.Get(r, "after")
	before := query.Get(r, "before")
	start := paging.ParseStart(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	base := bson.M{}
	var searchOr []bson.M
	if q != "" {
		fq := text.Fold(q)
		if fq != "" {
			hi := fq + "￿"
			searchOr = []bson.M{
				{"name_ci": bson.M{"$gte": fq, "$lt": hi}},
			}
			base["$or"] = searchOr
		}
	}

	total, err := h.DB.Collection("schools").CountDocuments(ctx, base)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count schools failed", err, "Unable to load schools.", "")
		return
	}

	f := maps.Clone(base)
	find := options.Find()
	sortField := "name_ci"

	cfg := paging.ConfigureKeyset(before, after)
	cfg.ApplyToFind(find, sortField)

	if ks := cfg.KeysetWindow(sortField); ks != nil {
		if q != "" && len(searchOr) > 0 {
			f["$and"] = []bson.M{{"$or": searchOr}, ks}
			delete(f, "$or")
		} else {
			maps.Copy(f, ks)
		}
	}

	cur, err := h.DB.Collection("schools").Find(ctx, f, find)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "find schools failed", err, "Unable to load schools.", "")
		return
	}
	defer cur.Close(ctx)

	var rows []listItem
	if err := cur.All(ctx, &rows); err != nil {
		h.ErrLog.LogServerError(w, r, "decode schools failed", err, "Unable to load schools.", "")
		return
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}

	page := paging.TrimPage(&rows, before, after)
	shown := len(rows)
	rng := paging.ComputeRange(start, shown)

	prevCur, nextCur := "", ""
	if len(rows) > 0 {
		prevCur = wafflemongo.EncodeCursor(rows[0].NameCI, rows[0].ID)
		nextCur = wafflemongo.EncodeCursor(rows[len(rows)-1].NameCI, rows[len(rows)-1].ID)
	}

	data := listData{
		BaseVM:    viewdata.NewBaseVM(r, "Schools", "/"),
		Q:         q,
		Items:     rows,
		CanCreate: schoolpolicy.CanCreateSchool(r),

		Shown:      shown,
		Total:      total,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: prevCur,
		NextCursor: nextCur,
		RangeStart: rng.Start,
		RangeEnd:   rng.End,
		PrevStart:  rng.PrevStart,
		NextStart:  rng.NextStart,
	}

	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == "schools-table-wrap" {
		templates.RenderSnippet(w, "schools_table", data)
		return
	}

	templates.Render(w, r, "schools_list", data)
}
