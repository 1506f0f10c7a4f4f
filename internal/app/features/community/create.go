package community

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/robacademy/robohub/internal/app/ai"
	"github.com/robacademy/robohub/internal/app/policy/postpolicy"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/formutil"
	"github.com/robacademy/robohub/internal/app/system/htmlsanitize"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.uber.org/zap"
)

const maxPostLen = 4000

type postFormData struct {
	formutil.Base
	Content  string
	ImageURL string
}

// ServeNew renders the post composer.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	if !postpolicy.CanCreatePost(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	data := postFormData{}
	formutil.SetBase(&data.Base, r, "New Post", "/community")
	templates.Render(w, r, "post_form", data)
}

// HandleCreate saves a new post in Pending status. When assist is
// configured the content first passes the moderation classifier; a harmful
// verdict bounces the post back to the composer.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !postpolicy.CanCreatePost(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "post create: parse form", err, "Invalid form submission.", "/community")
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	imageURL := strings.TrimSpace(r.FormValue("image_url"))

	renderWithError := func(msg string) {
		data := postFormData{Content: content, ImageURL: imageURL}
		formutil.SetBase(&data.Base, r, "New Post", "/community")
		data.SetError(msg)
		templates.Render(w, r, "post_form", data)
	}

	if content == "" {
		renderWithError("Write something first.")
		return
	}
	if len(content) > maxPostLen {
		renderWithError("Posts are limited to 4000 characters.")
		return
	}

	content = htmlsanitize.Sanitize(content)

	if h.AI.Enabled() {
		mctx, mcancel := context.WithTimeout(r.Context(), timeouts.Assist())
		verdict, err := h.AI.Moderate(mctx, content)
		mcancel()
		switch {
		case errors.Is(err, ai.ErrDisabled):
			// fall through to human moderation
		case err != nil:
			// Classifier outages must not block posting; the Pending queue
			// still gets a human look.
			h.Log.Warn("post create: moderation call failed", zap.Error(err))
		case verdict.IsHarmful:
			reason := verdict.Reason
			if reason == "" {
				reason = "it appears to violate the community guidelines"
			}
			renderWithError("Your post was not submitted: " + reason + ".")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, _, userID, _ := authz.UserCtx(r)
	author, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post create: load author", err, "A server error occurred.", "/community")
		return
	}

	if _, err := h.Posts.Create(ctx, models.Post{
		AuthorID:     author.ID,
		AuthorName:   author.FullName,
		AuthorHandle: author.Handle(),
		AuthorAvatar: author.AvatarURL,
		Content:      content,
		ImageURL:     imageURL,
		Status:       models.PostPending,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "post create", err, "Unable to save the post.", "/community")
		return
	}

	http.Redirect(w, r, "/community", http.StatusSeeOther)
}
