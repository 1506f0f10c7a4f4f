package register

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"github.com/robacademy/robohub/internal/app/system/auth"
	"github.com/robacademy/robohub/internal/app/system/normalize"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLen matches the shortest password the original sign-up form
// accepted.
const minPasswordLen = 8

type Handler struct {
	Users      *userstore.Store
	Schools    *schoolstore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
}

func NewHandler(
	users *userstore.Store,
	schools *schoolstore.Store,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		Schools:    schools,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
	}
}

type registerFormData struct {
	viewdata.BaseVM
	Error    string
	FullName string
	Email    string
	School   string
	Schools  []models.School
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	templates.Render(w, r, "register", registerFormData{
		BaseVM:  viewdata.NewBaseVM(r, "Create Account", "/"),
		Schools: h.schoolChoices(ctx),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "register: parse form", err, "Invalid form data.", "/register")
		return
	}

	form := registerFormData{
		FullName: normalize.Name(r.FormValue("full_name")),
		Email:    normalize.Email(r.FormValue("email")),
		School:   normalize.SchoolName(r.FormValue("school")),
	}
	password := r.FormValue("password")

	switch {
	case form.FullName == "":
		h.renderFormWithError(w, r, "Please enter your name.", form)
		return
	case form.Email == "":
		h.renderFormWithError(w, r, "Please enter your email.", form)
		return
	case len(password) < minPasswordLen:
		h.renderFormWithError(w, r, "Password must be at least 8 characters.", form)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register: hash password", err, "A server error occurred.", "/register")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     form.FullName,
		Email:        form.Email,
		School:       form.School,
		Role:         models.RoleStudent,
		AuthMethod:   "password",
		PasswordHash: string(hash),
		AvatarURL:    models.DefaultAvatarURL,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.renderFormWithError(w, r, "An account with that email already exists.", form)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "register: create user", err, "A server error occurred.", "/register")
		return
	}

	h.AuditLog.UserRegistered(ctx, r, u.ID, "password", u.Email)

	if err := h.SessionMgr.Login(w, r, userstore.SessionUserFor(&u)); err != nil {
		// The account exists; let them sign in manually.
		h.Log.Error("register: create session", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg string, form registerFormData) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	form.BaseVM = viewdata.NewBaseVM(r, "Create Account", "/")
	form.Error = msg
	form.Schools = h.schoolChoices(ctx)
	templates.Render(w, r, "register", form)
}

// schoolChoices loads the school dropdown. An empty list is fine; the form
// also accepts free-text affiliation.
func (h *Handler) schoolChoices(ctx context.Context) []models.School {
	schools, err := h.Schools.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		h.Log.Warn("register: list schools", zap.Error(err))
		return nil
	}
	return schools
}
