package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/app/registry"
	compstore "github.com/robacademy/robohub/internal/app/store/competitions"
	poststore "github.com/robacademy/robohub/internal/app/store/posts"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	teamstore "github.com/robacademy/robohub/internal/app/store/teams"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auth"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler assembles the role-specific dashboard.
type Handler struct {
	Users   *userstore.Store
	Schools *schoolstore.Store
	Teams   *teamstore.Store
	Comps   *compstore.Store
	Posts   *poststore.Store
	Reg     *registry.Registry
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

func NewHandler(
	users *userstore.Store,
	schools *schoolstore.Store,
	teams *teamstore.Store,
	comps *compstore.Store,
	posts *poststore.Store,
	reg *registry.Registry,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:   users,
		Schools: schools,
		Teams:   teams,
		Comps:   comps,
		Posts:   posts,
		Reg:     reg,
		Log:     logger,
		ErrLog:  errLog,
	}
}

type adminPanel struct {
	UserCount            int64
	SchoolCount          int64
	PendingPosts         int64
	PendingRegistrations []registry.PendingRegistration
}

type schoolAdminPanel struct {
	School  models.School
	Coaches []models.CoachProfile
	Teams   []models.Team
}

type coachPanel struct {
	Teams    []models.Team
	Upcoming []models.Competition
}

type dashboardData struct {
	viewdata.BaseVM
	Admin       *adminPanel
	SchoolAdmin *schoolAdminPanel
	Coach       *coachPanel

	// Shown for every role.
	Contributions int64
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login?return=/dashboard", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := dashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/"),
	}

	if oid, err := primitive.ObjectIDFromHex(su.ID); err == nil {
		if u, err := h.Users.GetByID(ctx, oid); err == nil {
			data.Contributions = u.Contributions
		}
	}

	switch {
	case authz.IsAdmin(r):
		data.Admin = h.adminPanel(ctx)
	case authz.IsSchoolAdmin(r):
		data.SchoolAdmin = h.schoolAdminPanel(ctx, r)
	case authz.IsCoach(r):
		data.Coach = h.coachPanel(ctx, su)
	}

	templates.Render(w, r, "dashboard", data)
}

// Panel loads are best-effort; a failed count still renders the page.

func (h *Handler) adminPanel(ctx context.Context) *adminPanel {
	p := &adminPanel{}

	var err error
	if p.UserCount, err = h.Users.Count(ctx, bson.M{}); err != nil {
		h.Log.Warn("dashboard: user count", zap.Error(err))
	}
	if p.SchoolCount, err = h.Schools.Count(ctx, bson.M{}); err != nil {
		h.Log.Warn("dashboard: school count", zap.Error(err))
	}
	if p.PendingPosts, err = h.Posts.Count(ctx, bson.M{"status": models.PostPending}); err != nil {
		h.Log.Warn("dashboard: pending post count", zap.Error(err))
	}
	if p.PendingRegistrations, err = h.Reg.ListPendingRegistrations(ctx); err != nil {
		h.Log.Warn("dashboard: pending registrations", zap.Error(err))
	}
	return p
}

func (h *Handler) schoolAdminPanel(ctx context.Context, r *http.Request) *schoolAdminPanel {
	schoolID := authz.UserSchoolID(r)
	if schoolID.IsZero() {
		return nil
	}

	school, err := h.Schools.GetByID(ctx, schoolID)
	if err != nil {
		h.Log.Warn("dashboard: school lookup", zap.Error(err))
		return nil
	}

	p := &schoolAdminPanel{School: school}
	if p.Coaches, err = h.Reg.ListCoachesForSchool(ctx, school.Name); err != nil {
		h.Log.Warn("dashboard: school coaches", zap.Error(err))
	}
	if p.Teams, err = h.Teams.FindBySchool(ctx, school.ID); err != nil {
		h.Log.Warn("dashboard: school teams", zap.Error(err))
	}
	return p
}

func (h *Handler) coachPanel(ctx context.Context, su *auth.SessionUser) *coachPanel {
	oid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return nil
	}

	p := &coachPanel{}
	if p.Teams, err = h.Teams.FindByCoach(ctx, oid); err != nil {
		h.Log.Warn("dashboard: coach teams", zap.Error(err))
	}
	if p.Upcoming, err = h.Comps.Find(ctx, bson.M{"status": models.CompetitionUpcoming}); err != nil {
		h.Log.Warn("dashboard: upcoming competitions", zap.Error(err))
	}
	return p
}
