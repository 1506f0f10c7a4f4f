package schools

import (
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/app/registry"
	coachstore "github.com/robacademy/robohub/internal/app/store/coaches"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	teamstore "github.com/robacademy/robohub/internal/app/store/teams"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the school directory and its management forms.
type Handler struct {
	DB       *mongo.Database
	Schools  *schoolstore.Store
	Coaches  *coachstore.Store
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
		Schools:  schoolstore.New(db),
		Coaches:  coachstore.New(db),
		Teams:    teamstore.New(db),
		Reg:      reg,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
