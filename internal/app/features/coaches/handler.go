package coaches

import (
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	coachstore "github.com/robacademy/robohub/internal/app/store/coaches"
	teamstore "github.com/robacademy/robohub/internal/app/store/teams"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public coach directory.
type Handler struct {
	DB      *mongo.Database
	Coaches *coachstore.Store
	Teams   *teamstore.Store
	Users   *userstore.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Coaches: coachstore.New(db),
		Teams:   teamstore.New(db),
		Users:   userstore.New(db),
		Log:     logger,
		ErrLog:  errLog,
	}
}
