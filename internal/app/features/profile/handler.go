package profile

import (
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/app/registry"
	coachstore "github.com/robacademy/robohub/internal/app/store/coaches"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"github.com/robacademy/robohub/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler serves the signed-in account's own profile pages.
type Handler struct {
	Users      *userstore.Store
	Coaches    *coachstore.Store
	Schools    *schoolstore.Store
	Reg        *registry.Registry
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
}

func NewHandler(
	users *userstore.Store,
	coaches *coachstore.Store,
	schools *schoolstore.Store,
	reg *registry.Registry,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		Coaches:    coaches,
		Schools:    schools,
		Reg:        reg,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
	}
}
