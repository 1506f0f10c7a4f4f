package users

import (
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/app/registry"
	cleanupstore "github.com/robacademy/robohub/internal/app/store/cleanup"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the account directory and the role management actions.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Schools  *schoolstore.Store
	Cleanup  *cleanupstore.Store
	Reg      *registry.Registry
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(
	db *mongo.Database,
	reg *registry.Registry,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Schools:  schoolstore.New(db),
		Cleanup:  cleanupstore.New(db),
		Reg:      reg,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
