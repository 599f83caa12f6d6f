package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/internal/service/ingest"
	"github.com/turath/archive-sync/internal/service/insights"
	"github.com/turath/archive-sync/internal/service/query"
	"github.com/turath/archive-sync/pkg/logger"
)

type Handlers struct {
	Archive  *ArchiveHandler
	Search   *SearchHandler
	Insights *InsightsHandler
	// Tasks is set only when the index queue is enabled.
	Tasks *TasksHandler
}

func NewHandlers(
	orchestrator ingest.Orchestrator,
	facade *query.Facade,
	insightService *insights.Service,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Archive:  NewArchiveHandler(orchestrator, facade, log),
		Search:   NewSearchHandler(facade, log),
		Insights: NewInsightsHandler(insightService, log),
	}
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError logs and maps a taxonomy error onto an HTTP status.
func writeError(c *gin.Context, log logger.Logger, message string, err error) {
	log.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}
	c.JSON(statusFor(err), response)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrClient):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
