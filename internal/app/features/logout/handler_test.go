package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robacademy/robohub/internal/app/features/logout"
	"github.com/robacademy/robohub/internal/app/store/audit"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"github.com/robacademy/robohub/internal/app/system/auth"
	"github.com/robacademy/robohub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *logout.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "robohub_test", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	audits := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})
	return logout.NewHandler(sm, audits, logger)
}

func TestServeLogout_Redirects(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Out Goer",
		Email: "out@example.com",
		Role:  "student",
	})
	rec := httptest.NewRecorder()

	h.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect: got %q, want %q", loc, "/")
	}
}

func TestServeLogout_HTMX(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	h.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Errorf("HX-Redirect: got %q, want %q", got, "/")
	}
}
