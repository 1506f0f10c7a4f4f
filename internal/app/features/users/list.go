package users

import (
	"context"
	"maps"
	"net/http"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/robacademy/robohub/internal/app/policy/userpolicy"
	"github.com/robacademy/robohub/internal/app/system/paging"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listItem struct {
	ID            primitive.ObjectID `bson:"_id"`
	FullName      string             `bson:"full_name"`
	FullNameCI    string             `bson:"full_name_ci"`
	Email         string             `bson:"email"`
	Role          string             `bson:"role"`
	School        string             `bson:"school"`
	Contributions int64              `bson:"contributions"`
}

type listData struct {
	viewdata.BaseVM
	Q          string
	RoleFilter string
	Items      []listItem

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

// ServeList handles GET /users (with optional ?q= search and ?role= filter).
// It supports HTMX partial refresh of the table when HX-Target="users-table-wrap".
// Routes mount this behind RequireRole("admin", "school_admin"); school
// admins see only their own school's accounts.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	scope := userpolicy.CanListUsers(r)
	if !scope.CanList {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	q := query.Search(r, "q")
	roleFilter := query.Get(r, "role")
	after := query.Get(r, "after")
	before := query.Get(r, "before")
	start := paging.ParseStart(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	base := bson.M{}
	if !scope.AllSchools {
		base["school"] = scope.School
	}
	switch roleFilter {
	case "student", "coach", "school_admin", "admin":
		base["role"] = roleFilter
	default:
		roleFilter = ""
	}

	var searchOr []bson.M
	if q != "" {
		fq := text.Fold(q)
		if fq != "" {
			hi := fq + "￿"
			searchOr = []bson.M{
				{"full_name_ci": bson.M{"$gte": fq, "$lt": hi}},
				{"email": bson.M{"$gte": fq, "$lt": hi}},
			}
			base["$or"] = searchOr
		}
	}

	total, err := h.DB.Collection("users").CountDocuments(ctx, base)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count users failed", err, "Unable to load accounts.", "")
		return
	}

	f := maps.Clone(base)
	find := options.Find()
	sortField := "full_name_ci"

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

	cur, err := h.DB.Collection("users").Find(ctx, f, find)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "find users failed", err, "Unable to load accounts.", "")
		return
	}
	defer cur.Close(ctx)

	var rows []listItem
	if err := cur.All(ctx, &rows); err != nil {
		h.ErrLog.LogServerError(w, r, "decode users failed", err, "Unable to load accounts.", "")
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
		prevCur = wafflemongo.EncodeCursor(rows[0].FullNameCI, rows[0].ID)
		nextCur = wafflemongo.EncodeCursor(rows[len(rows)-1].FullNameCI, rows[len(rows)-1].ID)
	}

	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "Accounts", "/dashboard"),
		Q:          q,
		RoleFilter: roleFilter,
		Items:      rows,

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
	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == "users-table-wrap" {
		templates.RenderSnippet(w, "users_table", data)
		return
	}

	templates.Render(w, r, "users_list", data)
}
