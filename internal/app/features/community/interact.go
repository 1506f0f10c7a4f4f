package community

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/gorilla/csrf"
	"github.com/robacademy/robohub/internal/app/policy/postpolicy"
	"github.com/robacademy/robohub/internal/app/registry"
	poststore "github.com/robacademy/robohub/internal/app/store/posts"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxCommentLen = 1000

type likeVM struct {
	ID        primitive.ObjectID
	Likes     int64
	Liked     bool
	CSRFToken string
}

// HandleLike toggles the signed-in user's like on an approved post. For
// HTMX requests it re-renders just the like button.
// POST /community/{id}/like
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "post like: not found", "That post does not exist.", "/community")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post like: load", err, "A server error occurred.", "/community")
		return
	}

	userID, ok := postpolicy.CanInteract(r, post)
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	liked := true
	err = txn.Run(ctx, h.DB.Client(), func(ctx context.Context) error {
		if err := h.Posts.InsertLike(ctx, post.ID, userID); err != nil {
			if !poststore.IsDupLike(err) {
				return err
			}
			// Second tap takes the like back.
			liked = false
			if _, err := h.Posts.DeleteLike(ctx, post.ID, userID); err != nil {
				return err
			}
			return h.Posts.IncLikes(ctx, post.ID, -1)
		}
		return h.Posts.IncLikes(ctx, post.ID, 1)
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post like", err, "Unable to update the like.", "/community")
		return
	}

	likes := post.Likes + 1
	if !liked {
		likes = post.Likes - 1
	}

	if r.Header.Get("HX-Request") != "" {
		templates.RenderSnippet(w, "post_like", likeVM{
			ID:        post.ID,
			Likes:     likes,
			Liked:     liked,
			CSRFToken: csrf.Token(r),
		})
		return
	}
	http.Redirect(w, r, "/community", http.StatusSeeOther)
}

// HandleComment appends a comment to an approved post and credits the
// commenter.
// POST /community/{id}/comment
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "post comment: parse form", err, "Invalid form submission.", "/community")
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" || len(text) > maxCommentLen {
		h.ErrLog.LogBadRequest(w, r, "post comment: bad text", nil, "Comments must be 1 to 1000 characters.", "/community")
		return
	}

	actor, ok := authz.ActorCtx(r)
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Reg.AddComment(ctx, actor, id, text)
	switch {
	case errors.Is(err, registry.ErrUnauthorized):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case errors.Is(err, registry.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "post comment: not found", "That post does not exist.", "/community")
		return
	case errors.Is(err, registry.ErrInvalidArgument):
		h.ErrLog.LogBadRequest(w, r, "post comment: rejected", err, "That comment could not be added.", "/community")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "post comment", err, "Unable to add the comment.", "/community")
		return
	}
	for _, warning := range res.Warnings {
		h.Log.Warn("post comment: secondary write failed",
			zap.String("post_id", id.Hex()),
			zap.String("op", warning.Op),
			zap.Error(warning.Err))
	}

	h.redirect(w, r, "/community")
}
