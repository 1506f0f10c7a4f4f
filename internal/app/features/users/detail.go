package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/policy/userpolicy"
	"github.com/robacademy/robohub/internal/app/registry"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type detailData struct {
	viewdata.BaseVM
	Account  models.User
	SchoolID string

	CanChangeRole bool
	CanDelete     bool
	Schools       []models.School
}

// ServeDetail handles GET /users/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "user detail: bad id", err, "Invalid account id.", "/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Reg.GetAccountWithSchool(ctx, id)
	if errors.Is(err, registry.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "user detail: not found", "That account does not exist.", "/users")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "user detail: load account", err, "A server error occurred.", "/users")
		return
	}

	if !userpolicy.CanViewUser(r, id, acct.User.School) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	data := detailData{
		BaseVM:        viewdata.NewBaseVM(r, acct.User.FullName, "/users"),
		Account:       acct.User,
		CanChangeRole: userpolicy.CanChangeRole(r, id),
		CanDelete:     userpolicy.CanDeleteUser(r, id),
	}
	if acct.SchoolID != nil {
		data.SchoolID = acct.SchoolID.Hex()
	}

	// The school-admin promotion form needs the school choices.
	if data.CanChangeRole {
		schools, err := h.Schools.Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
		if err != nil {
			h.Log.Warn("user detail: list schools", zap.Error(err))
		} else {
			data.Schools = schools
		}
	}

	templates.Render(w, r, "user_detail", data)
}
