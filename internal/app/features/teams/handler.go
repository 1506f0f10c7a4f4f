package teams

import (
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	teamstore "github.com/robacademy/robohub/internal/app/store/teams"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves team pages and team management. Creating or deleting a
// team also maintains the school's team counter.
type Handler struct {
	DB       *mongo.Database
	Teams    *teamstore.Store
	Schools  *schoolstore.Store
	Users    *userstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Teams:    teamstore.New(db),
		Schools:  schoolstore.New(db),
		Users:    userstore.New(db),
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
