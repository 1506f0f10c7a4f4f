package competitions

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/robacademy/robohub/internal/app/registry"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/txn"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type pendingData struct {
	viewdata.BaseVM
	Queue []registry.PendingRegistration
}

// ServePending renders the cross-competition approval queue.
// Authorization: RequireRole("admin") middleware in routes.go.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	queue, err := h.Reg.ListPendingRegistrations(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "pending registrations", err, "Unable to load the queue.", "/competitions")
		return
	}

	data := pendingData{
		BaseVM: viewdata.NewBaseVM(r, "Pending Registrations", "/competitions"),
		Queue:  queue,
	}
	templates.Render(w, r, "registrations_pending", data)
}

// HandleApprove flips one registration to Approved and bumps the
// competition's team count. Approving twice is a no-op.
// POST /competitions/{id}/registrations/{regID}/approve
// Authorization: RequireRole("admin") middleware in routes.go.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	comp, ok := h.loadCompetition(ctx, w, r)
	if !ok {
		return
	}
	dest := "/competitions/" + comp.ID.Hex()

	regID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "regID"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "approve registration: bad id", err, "Invalid registration id.", dest)
		return
	}

	reg, err := h.Comps.GetRegistration(ctx, regID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "approve registration: not found", "That registration does not exist.", dest)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "approve registration: load", err, "A server error occurred.", dest)
		return
	}

	if reg.Status != models.RegistrationApproved {
		err = txn.Run(ctx, h.DB.Client(), func(ctx context.Context) error {
			if err := h.Comps.SetRegistrationStatus(ctx, reg.ID, models.RegistrationApproved); err != nil {
				return err
			}
			return h.Comps.IncTeams(ctx, comp.ID, 1)
		})
		if err != nil {
			h.ErrLog.LogServerError(w, r, "approve registration", err, "Unable to approve the registration.", dest)
			return
		}

		if actor, ok := authz.ActorCtx(r); ok {
			h.AuditLog.RegistrationApproved(ctx, r, actor.ID, comp.ID, reg.TeamID, actor.Role)
		}
	}

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
