package profile

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auth"
	"github.com/robacademy/robohub/internal/app/system/normalize"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type profileEditData struct {
	viewdata.BaseVM
	Error     string
	FullName  string
	Phone     string
	School    string
	AvatarURL string

	// Coach-only fields; zero for everyone else.
	IsCoach   bool
	Expertise string
	About     string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /profile/edit                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	_, oid, ok := h.currentAccount(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, oid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile edit: load user", err, "A server error occurred.", "/profile")
		return
	}

	data := profileEditData{
		BaseVM:    viewdata.NewBaseVM(r, "Edit Profile", "/profile"),
		FullName:  u.FullName,
		Phone:     u.Phone,
		School:    u.School,
		AvatarURL: u.AvatarURL,
	}
	if u.Role == models.RoleCoach {
		data.IsCoach = true
		if cp, err := h.Coaches.GetByID(ctx, oid); err == nil {
			data.Expertise = cp.Expertise
			data.About = cp.About
		}
	}

	templates.Render(w, r, "profile_edit", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile/edit                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEditPost(w http.ResponseWriter, r *http.Request) {
	su, oid, ok := h.currentAccount(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile edit: parse form", err, "Invalid form data.", "/profile/edit")
		return
	}

	upd := userstore.ProfileUpdate{
		FullName:  r.FormValue("full_name"),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
		School:    r.FormValue("school"),
		AvatarURL: strings.TrimSpace(r.FormValue("avatar_url")),
	}

	if normalize.Name(upd.FullName) == "" {
		h.renderEditWithError(w, r, "Please enter your name.", upd)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, oid, upd); err != nil {
		h.ErrLog.LogServerError(w, r, "profile edit: update user", err, "A server error occurred.", "/profile/edit")
		return
	}

	// Coaches also carry a public directory profile.
	if su.Role == models.RoleCoach {
		expertise := strings.TrimSpace(r.FormValue("expertise"))
		about := strings.TrimSpace(r.FormValue("about"))
		if err := h.Coaches.Update(ctx, oid, expertise, about); err != nil {
			h.Log.Warn("profile edit: coach profile update failed",
				zap.String("user_id", oid.Hex()), zap.Error(err))
		}
	}

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *Handler) renderEditWithError(w http.ResponseWriter, r *http.Request, msg string, upd userstore.ProfileUpdate) {
	templates.Render(w, r, "profile_edit", profileEditData{
		BaseVM:    viewdata.NewBaseVM(r, "Edit Profile", "/profile"),
		Error:     msg,
		FullName:  upd.FullName,
		Phone:     upd.Phone,
		School:    upd.School,
		AvatarURL: upd.AvatarURL,
	})
}

// currentAccount resolves the session user and their ObjectID, handling the
// signed-out and corrupt-session cases.
func (h *Handler) currentAccount(w http.ResponseWriter, r *http.Request) (*auth.SessionUser, primitive.ObjectID, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login?return=/profile", http.StatusSeeOther)
		return nil, primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile: bad session user id", err, "Invalid session.", "/")
		return nil, primitive.NilObjectID, false
	}
	return su, oid, true
}
