package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"github.com/robacademy/robohub/internal/app/system/auth"
	"github.com/robacademy/robohub/internal/app/system/normalize"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users         *userstore.Store
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	AuditLog      *auditlog.Logger
	GoogleEnabled bool
}

func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:         users,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      audit,
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign In", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: parse form", err, "Invalid form data.", "/login")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue("return"))

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email, ret)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
		h.renderFormWithError(w, r, "No account found for that email.", email, ret)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "login: find user", err, "A server error occurred.", "/login")
		return
	}

	if normalize.Status(u.Status) == "disabled" {
		h.renderFormWithError(w, r,
			"Your account is currently disabled. Please contact an administrator.", email, ret)
		return
	}

	// Google accounts have no local password; send them to the OAuth flow.
	if normalize.AuthMethod(u.AuthMethod) == "google" {
		if h.GoogleEnabled {
			redirectURL := "/auth/google"
			if ret != "" {
				redirectURL += "?return=" + ret
			}
			http.Redirect(w, r, redirectURL, http.StatusSeeOther)
			return
		}
		h.renderFormWithError(w, r,
			"This account uses Google sign-in, which is not configured. Please contact an administrator.",
			email, ret)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, email)
		h.renderFormWithError(w, r, "Incorrect password.", email, ret)
		return
	}

	if err := h.SessionMgr.Login(w, r, userstore.SessionUserFor(u)); err != nil {
		h.ErrLog.LogServerError(w, r, "login: create session", err, "A server error occurred.", "/login")
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, normalize.AuthMethod(u.AuthMethod), email)

	dest := ret
	if dest == "" || !strings.HasPrefix(dest, "/") {
		dest = "/dashboard"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, ret string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign In", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}
