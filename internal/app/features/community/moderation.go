package community

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/policy/postpolicy"
	"github.com/robacademy/robohub/internal/app/registry"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/htmlsanitize"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type queueItem struct {
	models.Post
	DisplayHTML template.HTML
}

type queueData struct {
	viewdata.BaseVM
	Items []queueItem
}

// ServeQueue renders the Pending posts oldest first.
// Authorization: RequireRole("admin") middleware in routes.go.
func (h *Handler) ServeQueue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	posts, err := h.Posts.Find(ctx, bson.M{"status": models.PostPending},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load moderation queue failed", err, "Unable to load the queue.", "/community")
		return
	}

	data := queueData{BaseVM: viewdata.NewBaseVM(r, "Moderation Queue", "/community")}
	for _, p := range posts {
		data.Items = append(data.Items, queueItem{Post: p, DisplayHTML: htmlsanitize.PrepareForDisplay(p.Content)})
	}

	templates.Render(w, r, "community_queue", data)
}

func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "post: bad id", err, "Invalid post id.", "/community")
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, dest string) {
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// HandleApprove publishes a Pending post and credits the author's
// contribution counter.
// POST /community/{id}/approve
// Authorization: RequireRole("admin") middleware in routes.go.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	actor, ok := authz.ActorCtx(r)
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "post approve: not found", "That post does not exist.", "/community/pending")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post approve: load", err, "A server error occurred.", "/community/pending")
		return
	}

	res, err := h.Reg.ApprovePost(ctx, actor, id)
	switch {
	case errors.Is(err, registry.ErrUnauthorized):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case errors.Is(err, registry.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "post approve: not found", "That post does not exist.", "/community/pending")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "post approve", err, "Unable to approve the post.", "/community/pending")
		return
	}
	for _, warning := range res.Warnings {
		h.Log.Warn("post approve: secondary write failed",
			zap.String("post_id", id.Hex()),
			zap.String("op", warning.Op),
			zap.Error(warning.Err))
	}

	h.AuditLog.PostApproved(ctx, r, actor.ID, id, post.AuthorID, actor.Role)
	h.redirect(w, r, "/community/pending")
}

// HandleDelete removes a post. Authors may delete their own posts, admins
// any post.
// POST /community/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "post delete: not found", "That post does not exist.", "/community")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post delete: load", err, "A server error occurred.", "/community")
		return
	}

	if !postpolicy.CanDeletePost(r, post) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Posts.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "post delete", err, "Unable to delete the post.", "/community")
		return
	}

	if actor, ok := authz.ActorCtx(r); ok {
		h.AuditLog.PostDeleted(ctx, r, actor.ID, id, post.AuthorID, actor.Role)
	}
	h.redirect(w, r, "/community")
}
