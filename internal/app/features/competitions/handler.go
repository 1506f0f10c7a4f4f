package competitions

import (
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/app/registry"
	compstore "github.com/robacademy/robohub/internal/app/store/competitions"
	teamstore "github.com/robacademy/robohub/internal/app/store/teams"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the competition calendar, team registration, and the
// admin approval queue.
type Handler struct {
	DB       *mongo.Database
	Comps    *compstore.Store
	Teams    *teamstore.Store
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
		Comps:    compstore.New(db),
		Teams:    teamstore.New(db),
		Reg:      reg,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
