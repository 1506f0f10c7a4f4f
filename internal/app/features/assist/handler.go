package assist

import (
	"github.com/robacademy/robohub/internal/app/ai"
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"go.uber.org/zap"
)

// Handler serves the assist workspace: the coach chat, the post drafter,
// and the image generator. Everything degrades to a "not configured"
// notice when no API key is set.
type Handler struct {
	AI     *ai.Client
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(aiClient *ai.Client, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		AI:     aiClient,
		Log:    logger,
		ErrLog: errLog,
	}
}
