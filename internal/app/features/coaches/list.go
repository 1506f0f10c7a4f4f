package coaches

import (
	"context"
	"maps"
	"net/http"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/robacademy/robohub/internal/app/system/paging"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listItem struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	NameCI    string             `bson:"name_ci"`
	School    string             `bson:"school"`
	Expertise string             `bson:"expertise"`
	AvatarURL string             `bson:"avatar_url"`
}

type listData struct {
	viewdata.BaseVM
	Q            string
	SchoolFilter string
	Items        []listItem

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

// ServeList handles GET /coaches (with optional ?q= search and ?school=
// filter). It supports HTMX partial refresh of the table when
// HX-Target="coaches-table-wrap". The directory is public.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := query.Search(r, "q")
	schoolFilter := query.Get(r, "school")
	after := query.Get(r, "after")
	before := query.Get(r, "before")
	start := paging.ParseStart(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	base := bson.M{}
	if schoolFilter != "" {
		base["school"] = schoolFilter
	}
	if q != "" {
		fq := text.Fold(q)
		if fq != "" {
			base["name_ci"] = bson.M{"$gte": fq, "$lt": fq + "￿"}
		}
	}

	total, err := h.DB.Collection("coaches").CountDocuments(ctx, base)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count coaches failed", err, "Unable to load coaches.", "")
		return
	}

	f := maps.Clone(base)
	find := options.Find()
	sortField := "name_ci"

	cfg := paging.ConfigureKeyset(before, after)
	cfg.ApplyToFind(find, sortField)

	if ks := cfg.KeysetWindow(sortField); ks != nil {
		maps.Copy(f, ks)
	}

	cur, err := h.DB.Collection("coaches").Find(ctx, f, find)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "find coaches failed", err, "Unable to load coaches.", "")
		return
	}
	defer cur.Close(ctx)

	var rows []listItem
	if err := cur.All(ctx, &rows); err != nil {
		h.ErrLog.LogServerError(w, r, "decode coaches failed", err, "Unable to load coaches.", "")
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
		BaseVM:       viewdata.NewBaseVM(r, "Coaches", "/"),
		Q:            q,
		SchoolFilter: schoolFilter,
		Items:        rows,

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

	// HTMX partial: just the table
	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == "coaches-table-wrap" {
		templates.RenderSnippet(w, "coaches_table", data)
		return
	}

	templates.Render(w, r, "coaches_list", data)
}
