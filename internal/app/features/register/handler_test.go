package register_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/app/features/register"
	"github.com/robacademy/robohub/internal/app/store/audit"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"github.com/robacademy/robohub/internal/app/system/auth"
	"github.com/robacademy/robohub/internal/app/system/indexes"
	"github.com/robacademy/robohub/internal/domain/models"
	"github.com/robacademy/robohub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*register.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "robohub_test", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})

	h := register.NewHandler(
		userstore.New(db),
		schoolstore.New(db),
		sm,
		uierrors.NewErrorLogger(logger),
		audits,
		logger,
	)
	return h, db
}

func postRegister(h *register.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	// Validation failures re-render the form, which needs a booted template
	// engine. The success path redirects first.
	defer func() { _ = recover() }()
	h.HandleRegisterPost(rec, req)
	return rec
}

func TestHandleRegisterPost_CreatesStudent(t *testing.T) {
	h, db := newTestHandler(t)

	rec := postRegister(h, url.Values{
		"full_name": {"  Grace   Hopper  "},
		"email":     {"Grace@Example.com"},
		"password":  {"compilers-forever"},
		"school":    {"Navy STEM Academy"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("redirect: got %q, want %q", loc, "/dashboard")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := userstore.New(db).GetByEmail(ctx, "grace@example.com")
	if err != nil {
		t.Fatalf("fetch created user: %v", err)
	}
	if u.FullName != "Grace Hopper" {
		t.Errorf("full name: got %q, want %q", u.FullName, "Grace Hopper")
	}
	if u.Role != models.RoleStudent {
		t.Errorf("role: got %q, want %q", u.Role, models.RoleStudent)
	}
	if u.School != "Navy STEM Academy" {
		t.Errorf("school: got %q, want %q", u.School, "Navy STEM Academy")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("compilers-forever")); err != nil {
		t.Error("stored hash does not match the submitted password")
	}
}

func TestHandleRegisterPost_DuplicateEmail(t *testing.T) {
	h, db := newTestHandler(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	form := url.Values{
		"full_name": {"First Taker"},
		"email":     {"taken@example.com"},
		"password":  {"password-one-two"},
	}
	if rec := postRegister(h, form); rec.Code != http.StatusSeeOther {
		t.Fatalf("first registration failed with status %d", rec.Code)
	}

	rec := postRegister(h, form)
	if rec.Code == http.StatusSeeOther {
		t.Fatal("duplicate email must not create a session")
	}
}

func TestHandleRegisterPost_ShortPassword(t *testing.T) {
	h, db := newTestHandler(t)

	rec := postRegister(h, url.Values{
		"full_name": {"Shorty"},
		"email":     {"short@example.com"},
		"password":  {"2short"},
	})

	if rec.Code == http.StatusSeeOther {
		t.Fatal("short password must be rejected")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := userstore.New(db).GetByEmail(ctx, "short@example.com"); err == nil {
		t.Error("no account should have been created")
	}
}
