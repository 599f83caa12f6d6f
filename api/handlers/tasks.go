package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turath/archive-sync/pkg/logger"
	"github.com/turath/archive-sync/pkg/queue"
)

// TaskStatusReader reads the persisted state of an item's index task.
type TaskStatusReader interface {
	GetTaskStatus(ctx context.Context, itemID string) (*queue.TaskStatus, error)
}

// TasksHandler exposes index task status for queue-backed deployments.
type TasksHandler struct {
	statuses TaskStatusReader
	logger   logger.Logger
}

func NewTasksHandler(statuses TaskStatusReader, log logger.Logger) *TasksHandler {
	return &TasksHandler{statuses: statuses, logger: log}
}

// GetStatus returns the last known state of the item's index task.
// Statuses expire after a TTL, so an old task reads as 404.
func (h *TasksHandler) GetStatus(c *gin.Context) {
	id := c.Param("id")

	status, err := h.statuses.GetTaskStatus(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "Failed to get task status", err)
		return
	}

	c.JSON(http.StatusOK, status)
}
