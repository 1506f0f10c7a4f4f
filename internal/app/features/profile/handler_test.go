package profile_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/app/features/profile"
	"github.com/robacademy/robohub/internal/app/registry"
	"github.com/robacademy/robohub/internal/app/store/audit"
	coachstore "github.com/robacademy/robohub/internal/app/store/coaches"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"github.com/robacademy/robohub/internal/app/system/auth"
	"github.com/robacademy/robohub/internal/domain/models"
	"github.com/robacademy/robohub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*profile.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "robohub_test", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})

	h := profile.NewHandler(
		userstore.New(db),
		coachstore.New(db),
		schoolstore.New(db),
		registry.New(db, logger),
		sm,
		uierrors.NewErrorLogger(logger),
		audits,
		logger,
	)
	return h, db
}

func asUser(req *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(req, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	})
}

func TestServeProfile_RedirectsWhenSignedOut(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/profile", nil)
	rec := httptest.NewRecorder()

	h.ServeProfile(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login") {
		t.Errorf("redirect: got %q, want /login…", loc)
	}
}

func TestHandleEditPost_UpdatesProfile(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateStudent(ctx, "Edit Me", "editme@example.com", "Lincoln High")

	form := url.Values{
		"full_name":  {"Edited Name"},
		"phone":      {"555-0100"},
		"school":     {"Lincoln High"},
		"avatar_url": {"https://example.com/me.png"},
	}
	req := httptest.NewRequest("POST", "/profile/edit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asUser(req, u)
	rec := httptest.NewRecorder()

	h.HandleEditPost(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	got, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.FullName != "Edited Name" {
		t.Errorf("full name: got %q, want %q", got.FullName, "Edited Name")
	}
	if got.Phone != "555-0100" {
		t.Errorf("phone: got %q, want %q", got.Phone, "555-0100")
	}
}

func TestHandleDeletePost_DeletesOwnAccount(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateStudent(ctx, "Leaving Soon", "leaving@example.com", "")

	req := httptest.NewRequest("POST", "/profile/delete", nil)
	req = asUser(req, u)
	rec := httptest.NewRecorder()

	h.HandleDeletePost(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect: got %q, want %q", loc, "/")
	}

	if _, err := userstore.New(db).GetByID(ctx, u.ID); err != mongo.ErrNoDocuments {
		t.Errorf("account lookup after delete: got err %v, want ErrNoDocuments", err)
	}
}
