package users_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/app/features/users"
	"github.com/robacademy/robohub/internal/app/registry"
	"github.com/robacademy/robohub/internal/app/store/audit"
	cleanupstore "github.com/robacademy/robohub/internal/app/store/cleanup"
	coachstore "github.com/robacademy/robohub/internal/app/store/coaches"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"github.com/robacademy/robohub/internal/domain/models"
	"github.com/robacademy/robohub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*users.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	audits := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})
	h := users.NewHandler(db, registry.New(db, logger), uierrors.NewErrorLogger(logger), audits, logger)
	return h, db
}

func actionRequest(target string, id string, admin testutil.TestUser, form url.Values) *http.Request {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest("POST", target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req = testutil.WithUser(req, admin)
	return testutil.WithChiURLParam(req, "id", id)
}

func TestHandlePromoteCoach(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	student := fx.CreateStudent(ctx, "Future Coach", "future@example.com", "Lincoln High")
	admin := testutil.AdminUser()

	rec := httptest.NewRecorder()
	h.HandlePromoteCoach(rec, actionRequest("/users/"+student.ID.Hex()+"/promote-coach", student.ID.Hex(), admin, nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	u, err := userstore.New(db).GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if u.Role != models.RoleCoach {
		t.Errorf("role: got %q, want %q", u.Role, models.RoleCoach)
	}
	if _, err := coachstore.New(db).GetByID(ctx, student.ID); err != nil {
		t.Errorf("coach profile after promotion: %v", err)
	}

	// The promotion is in the audit trail.
	events, err := audit.New(db).GetByUser(ctx, student.ID, 10)
	if err != nil {
		t.Fatalf("query audit: %v", err)
	}
	if len(events) == 0 {
		t.Error("expected an audit event for the promotion")
	}
}

func TestHandlePromoteCoach_ForbiddenForNonAdmin(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	student := fx.CreateStudent(ctx, "Stays Student", "stays@example.com", "")
	coach := testutil.CoachUser("Lincoln High")

	rec := httptest.NewRecorder()
	h.HandlePromoteCoach(rec, actionRequest("/users/"+student.ID.Hex()+"/promote-coach", student.ID.Hex(), coach, nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}

	u, _ := userstore.New(db).GetByID(ctx, student.ID)
	if u.Role != models.RoleStudent {
		t.Errorf("role must be unchanged, got %q", u.Role)
	}
}

func TestHandlePromoteSchoolAdmin_ThenDemote(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	school := fx.CreateSchool(ctx, "Roosevelt High")
	student := fx.CreateStudent(ctx, "Admin To Be", "admintobe@example.com", "")
	admin := testutil.AdminUser()

	rec := httptest.NewRecorder()
	h.HandlePromoteSchoolAdmin(rec, actionRequest(
		"/users/"+student.ID.Hex()+"/promote-school-admin",
		student.ID.Hex(), admin,
		url.Values{"school_id": {school.ID.Hex()}},
	))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("promote status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	u, err := userstore.New(db).GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if u.Role != models.RoleSchoolAdmin {
		t.Fatalf("role: got %q, want %q", u.Role, models.RoleSchoolAdmin)
	}
	if u.SchoolID == nil || *u.SchoolID != school.ID {
		t.Fatal("school binding was not set")
	}

	rec = httptest.NewRecorder()
	h.HandleDemoteSchoolAdmin(rec, actionRequest(
		"/users/"+student.ID.Hex()+"/demote-school-admin",
		student.ID.Hex(), admin, nil,
	))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("demote status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	u, _ = userstore.New(db).GetByID(ctx, student.ID)
	if u.Role != models.RoleStudent || u.SchoolID != nil {
		t.Errorf("demotion left role %q schoolID %v", u.Role, u.SchoolID)
	}
}

func TestHandleDelete_EnqueuesCleanup(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	student := fx.CreateStudent(ctx, "To Delete", "todelete@example.com", "")
	admin := testutil.AdminUser()

	rec := httptest.NewRecorder()
	h.HandleDelete(rec, actionRequest("/users/"+student.ID.Hex()+"/delete", student.ID.Hex(), admin, nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/users" {
		t.Errorf("redirect: got %q, want %q", loc, "/users")
	}

	if _, err := userstore.New(db).GetByID(ctx, student.ID); err != mongo.ErrNoDocuments {
		t.Errorf("account lookup after delete: got err %v, want ErrNoDocuments", err)
	}

	n, err := cleanupstore.New(db).Count(ctx, bson.M{"user_id": student.ID, "done": false})
	if err != nil {
		t.Fatalf("count cleanup tasks: %v", err)
	}
	if n != 1 {
		t.Errorf("cleanup tasks: got %d, want 1", n)
	}
}

func TestHandleCleanupDone(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	student := fx.CreateStudent(ctx, "Cleanup Target", "cleanup@example.com", "")
	task, err := cleanupstore.New(db).Enqueue(ctx, student.ID, student.ID, student.Email)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	form := url.Values{"token": {task.Token}}
	req := httptest.NewRequest("POST", "/users/cleanup/done", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.HandleCleanupDone(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	n, _ := cleanupstore.New(db).Count(ctx, bson.M{"done": false})
	if n != 0 {
		t.Errorf("open tasks after done: got %d, want 0", n)
	}
}
