package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/policy/userpolicy"
	"github.com/robacademy/robohub/internal/app/registry"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// actionTarget parses the {id} URL param and runs the shared authorization
// gate for role changes.
func (h *Handler) actionTarget(w http.ResponseWriter, r *http.Request) (authz.Actor, primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "user action: bad id", err, "Invalid account id.", "/users")
		return authz.Actor{}, primitive.NilObjectID, false
	}

	actor, ok := authz.ActorCtx(r)
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return authz.Actor{}, primitive.NilObjectID, false
	}

	if !userpolicy.CanChangeRole(r, id) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return authz.Actor{}, primitive.NilObjectID, false
	}
	return actor, id, true
}

// finishAction logs warnings, maps registry sentinels to responses, and
// redirects back to the account page.
func (h *Handler) finishAction(w http.ResponseWriter, r *http.Request, op string, id primitive.ObjectID, res registry.Result, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, op+": target missing", "That account does not exist.", "/users")
		return
	case errors.Is(err, registry.ErrUnauthorized):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case errors.Is(err, registry.ErrInvalidArgument):
		h.ErrLog.LogBadRequest(w, r, op+": invalid argument", err, "Invalid request.", "/users/"+id.Hex())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, op+" failed", err, "The change could not be applied.", "/users/"+id.Hex())
		return
	}

	for _, warning := range res.Warnings {
		h.Log.Warn(op+": secondary write failed",
			zap.String("target_id", id.Hex()),
			zap.String("op", warning.Op),
			zap.Error(warning.Err))
	}

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/users/"+id.Hex())
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/users/"+id.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /users/{id}/promote-coach                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandlePromoteCoach(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actionTarget(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Reg.PromoteToCoach(ctx, actor, id)
	if err == nil {
		acct, lookupErr := h.Reg.GetAccountWithSchool(ctx, id)
		school := ""
		if lookupErr == nil {
			school = acct.User.School
		}
		h.AuditLog.UserPromotedCoach(ctx, r, actor.ID, id, nil, actor.Role, school)
	}
	h.finishAction(w, r, "promote coach", id, res, err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /users/{id}/demote-coach                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDemoteCoach(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actionTarget(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Reg.DemoteCoach(ctx, actor, id)
	if err == nil {
		h.AuditLog.UserDemotedCoach(ctx, r, actor.ID, id, actor.Role)
	}
	h.finishAction(w, r, "demote coach", id, res, err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /users/{id}/promote-school-admin                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandlePromoteSchoolAdmin(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actionTarget(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "promote school admin: parse form", err, "Invalid form data.", "/users/"+id.Hex())
		return
	}
	schoolID, err := primitive.ObjectIDFromHex(r.FormValue("school_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "promote school admin: bad school id", err, "Please choose a school.", "/users/"+id.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Reg.PromoteToSchoolAdmin(ctx, actor, id, schoolID)
	if err == nil {
		school, lookupErr := h.Schools.GetByID(ctx, schoolID)
		name := ""
		if lookupErr == nil {
			name = school.Name
		}
		h.AuditLog.UserPromotedSchoolAdmin(ctx, r, actor.ID, id, schoolID, actor.Role, name)
	}
	h.finishAction(w, r, "promote school admin", id, res, err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /users/{id}/demote-school-admin                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDemoteSchoolAdmin(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actionTarget(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Capture the binding before the demotion clears it.
	var schoolID *primitive.ObjectID
	if u, lookupErr := h.Users.GetByID(ctx, id); lookupErr == nil {
		schoolID = u.SchoolID
	}

	res, err := h.Reg.DemoteSchoolAdmin(ctx, actor, id)
	if err == nil {
		h.AuditLog.UserDemotedSchoolAdmin(ctx, r, actor.ID, id, schoolID, actor.Role)
	}
	h.finishAction(w, r, "demote school admin", id, res, err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /users/{id}/delete                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "user delete: bad id", err, "Invalid account id.", "/users")
		return
	}

	actor, ok := authz.ActorCtx(r)
	if !ok || !userpolicy.CanDeleteUser(r, id) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// The role disappears with the document; capture it for the audit trail.
	deletedRole := ""
	if u, lookupErr := h.Users.GetByID(ctx, id); lookupErr == nil {
		deletedRole = u.Role
	}

	res, err := h.Reg.DeleteAccount(ctx, actor, id)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "user delete: target missing", "That account does not exist.", "/users")
		return
	case errors.Is(err, registry.ErrUnauthorized):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "user delete failed", err, "The account could not be deleted.", "/users")
		return
	}

	for _, warning := range res.Warnings {
		h.Log.Warn("user delete: secondary write failed",
			zap.String("target_id", id.Hex()),
			zap.String("op", warning.Op),
			zap.Error(warning.Err))
	}

	h.AuditLog.UserDeleted(ctx, r, actor.ID, id, actor.Role, deletedRole)

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/users")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}
