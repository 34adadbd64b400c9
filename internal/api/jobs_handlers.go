package api

import (
	"fmt"
	"net/http"

	"github.com/vytor/heartgame/internal/errors"
	"github.com/vytor/heartgame/internal/logger"
)

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	if s.Jobs == nil {
		handleError(w, r, errors.NewInternalError(fmt.Errorf("job queue not configured")))
		return
	}
	if err := s.Jobs.EnqueueReconcile(); err != nil {
		log.Warn("failed to enqueue reconcile: %v", err)
		handleError(w, r, errors.NewInternalError(err))
		return
	}
	log.Info("aggregate reconcile enqueued")
	respond(w, r, http.StatusAccepted, "Reconcile queued", nil, nil)
}
