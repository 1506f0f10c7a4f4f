package community

import (
	"github.com/robacademy/robohub/internal/app/ai"
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/app/registry"
	poststore "github.com/robacademy/robohub/internal/app/store/posts"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the community feed: posts, comments, likes, and the
// moderation queue. New posts start Pending and only appear in the feed
// once an admin approves them.
type Handler struct {
	DB       *mongo.Database
	Posts    *poststore.Store
	Users    *userstore.Store
	Reg      *registry.Registry
	AI       *ai.Client
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(
	db *mongo.Database,
	reg *registry.Registry,
	aiClient *ai.Client,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:       db,
		Posts:    poststore.New(db),
		Users:    userstore.New(db),
		Reg:      reg,
		AI:       aiClient,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
