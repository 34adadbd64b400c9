package api

import (
	"net/http"

	"github.com/vytor/heartgame/internal/errors"
	"github.com/vytor/heartgame/internal/logger"
)

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.WithError(err).Error("server error: code=%s", appErr.Code)
	} else {
		log.WithError(err).Warn("client error: code=%s", appErr.Code)
	}

	writeJSON(w, r, appErr.Status, envelope{
		"success": false,
		"message": appErr.Message,
		"error":   appErr.Code,
	})
}
