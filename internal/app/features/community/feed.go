package community

import (
	"context"
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/robacademy/robohub/internal/app/policy/postpolicy"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/htmlsanitize"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// feedLimit caps the feed at one query's worth of recent posts.
const feedLimit = 50

type feedItem struct {
	models.Post
	DisplayHTML template.HTML
	Liked       bool
	CanDelete   bool

	// CSRFToken rides along so the like button snippet can post.
	CSRFToken string
}

type feedData struct {
	viewdata.BaseVM
	Items       []feedItem
	CanPost     bool
	CanModerate bool
}

// ServeFeed handles GET /community: the newest approved posts, with the
// signed-in user's likes marked.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	posts, err := h.Posts.Find(ctx, bson.M{"status": models.PostApproved},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
			SetLimit(feedLimit))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load feed failed", err, "Unable to load the community feed.", "/")
		return
	}

	liked := map[primitive.ObjectID]bool{}
	if _, _, userID, ok := authz.UserCtx(r); ok && len(posts) > 0 {
		ids := make([]primitive.ObjectID, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		if liked, err = h.Posts.LikedSet(ctx, userID, ids); err != nil {
			h.ErrLog.LogServerError(w, r, "load likes failed", err, "Unable to load the community feed.", "/")
			return
		}
	}

	data := feedData{
		BaseVM:      viewdata.NewBaseVM(r, "Community", "/"),
		CanPost:     postpolicy.CanCreatePost(r),
		CanModerate: postpolicy.CanModerate(r),
	}
	for _, p := range posts {
		data.Items = append(data.Items, feedItem{
			Post:        p,
			DisplayHTML: htmlsanitize.PrepareForDisplay(p.Content),
			Liked:       liked[p.ID],
			CanDelete:   postpolicy.CanDeletePost(r, p),
			CSRFToken:   data.CSRFToken,
		})
	}

	templates.Render(w, r, "community_feed", data)
}
