package competitions_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/robacademy/robohub/internal/app/features/competitions"
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/app/registry"
	"github.com/robacademy/robohub/internal/app/store/audit"
	compstore "github.com/robacademy/robohub/internal/app/store/competitions"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"github.com/robacademy/robohub/internal/domain/models"
	"github.com/robacademy/robohub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*competitions.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	audits := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})
	h := competitions.NewHandler(db, registry.New(db, logger), uierrors.NewErrorLogger(logger), audits, logger)
	return h, db
}

func postForm(target string, u testutil.TestUser, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, u)
}

func TestHandleCreate(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, postForm("/competitions/new", testutil.AdminUser(), url.Values{
		"name":        {"Spring Scrimmage"},
		"date":        {"2027-04-10"},
		"description": {"Season opener."},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	comps, err := compstore.New(db).Find(ctx, compstore.SearchFilter("spring"))
	if err != nil {
		t.Fatalf("find competitions: %v", err)
	}
	if len(comps) != 1 {
		t.Fatalf("competitions: got %d, want 1", len(comps))
	}
	if comps[0].Status != models.CompetitionUpcoming {
		t.Errorf("status: got %q, want %q", comps[0].Status, models.CompetitionUpcoming)
	}
}

func TestHandleRegister_CoachRegistersOwnTeam(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	school := fx.CreateSchool(ctx, "Lincoln High")
	coach, _ := fx.CreateCoach(ctx, "Coach Carter", "carter@example.com", "Lincoln High")
	team := fx.CreateTeam(ctx, "Gear Grinders", school, coach)
	comp := fx.CreateCompetition(ctx, "Regional Qualifier", time.Now().AddDate(0, 1, 0))

	req := postForm("/competitions/"+comp.ID.Hex()+"/register", testutil.FromUser(coach), url.Values{
		"team_id": {team.ID.Hex()},
	})
	req = testutil.WithChiURLParam(req, "id", comp.ID.Hex())

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	regs, err := compstore.New(db).ListPending(ctx, comp.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("pending registrations: got %d, want 1", len(regs))
	}
	if regs[0].TeamID != team.ID {
		t.Errorf("team: got %s, want %s", regs[0].TeamID.Hex(), team.ID.Hex())
	}
}

func TestHandleRegister_ForbiddenForOtherCoach(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	school := fx.CreateSchool(ctx, "Lincoln High")
	coach, _ := fx.CreateCoach(ctx, "Coach Carter", "carter@example.com", "Lincoln High")
	team := fx.CreateTeam(ctx, "Gear Grinders", school, coach)
	comp := fx.CreateCompetition(ctx, "Regional Qualifier", time.Now().AddDate(0, 1, 0))
	rival, _ := fx.CreateCoach(ctx, "Rival Coach", "rival@example.com", "Roosevelt High")

	req := postForm("/competitions/"+comp.ID.Hex()+"/register", testutil.FromUser(rival), url.Values{
		"team_id": {team.ID.Hex()},
	})
	req = testutil.WithChiURLParam(req, "id", comp.ID.Hex())

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHandleApprove(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	school := fx.CreateSchool(ctx, "Lincoln High")
	coach, _ := fx.CreateCoach(ctx, "Coach Carter", "carter@example.com", "Lincoln High")
	team := fx.CreateTeam(ctx, "Gear Grinders", school, coach)
	comp := fx.CreateCompetition(ctx, "Regional Qualifier", time.Now().AddDate(0, 1, 0))
	reg := fx.CreateRegistration(ctx, comp, team, models.RegistrationPending)

	approve := func() *httptest.ResponseRecorder {
		req := postForm("/competitions/"+comp.ID.Hex()+"/registrations/"+reg.ID.Hex()+"/approve",
			testutil.AdminUser(), nil)
		req = testutil.WithChiURLParam(req, "id", comp.ID.Hex())
		req = testutil.WithChiURLParam(req, "regID", reg.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleApprove(rec, req)
		return rec
	}

	if rec := approve(); rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	store := compstore.New(db)
	got, err := store.GetRegistration(ctx, reg.ID)
	if err != nil {
		t.Fatalf("reload registration: %v", err)
	}
	if got.Status != models.RegistrationApproved {
		t.Errorf("status: got %q, want %q", got.Status, models.RegistrationApproved)
	}

	reloaded, err := store.GetByID(ctx, comp.ID)
	if err != nil {
		t.Fatalf("reload competition: %v", err)
	}
	if reloaded.Teams != 1 {
		t.Errorf("team counter: got %d, want 1", reloaded.Teams)
	}

	// Approving again must not double-count.
	approve()
	reloaded, _ = store.GetByID(ctx, comp.ID)
	if reloaded.Teams != 1 {
		t.Errorf("team counter after re-approve: got %d, want 1", reloaded.Teams)
	}
}
