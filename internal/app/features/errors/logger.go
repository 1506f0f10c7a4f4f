// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	"github.com/robacademy/robohub/internal/app/system/authz"
)

// ErrorLogger pairs structured logging with user-facing error pages so
// handlers report failures in one call.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

// LogServerError logs the failure at error level and renders a friendly
// "something went wrong" page with the given user message.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	e.render(w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
}

// LogBadRequest logs the failure at warn level and renders the error page
// with a 400 status.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	e.render(w, r, http.StatusBadRequest, "Invalid request", userMsg, backURL)
}

// LogNotFound logs at info level and renders a "not found" page.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, logMsg, userMsg, backURL string) {
	e.log.Info(logMsg,
		zap.String("path", r.URL.Path),
	)
	e.render(w, r, http.StatusNotFound, "Not found", userMsg, backURL)
}

func (e *ErrorLogger) render(w http.ResponseWriter, r *http.Request, status int, title, userMsg, backURL string) {
	role, name, _, signedIn := authz.UserCtx(r)
	if backURL == "" {
		backURL = "/"
	}
	if userMsg == "" {
		userMsg = "Something went wrong. Please try again."
	}

	w.WriteHeader(status)
	templates.Render(w, r, "error_server", pageData{
		Title:      title,
		IsLoggedIn: signedIn,
		Role:       role,
		UserName:   name,
		Message:    userMsg,
		BackURL:    backURL,
	})
}
