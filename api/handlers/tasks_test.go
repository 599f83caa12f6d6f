package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/pkg/logger"
	"github.com/turath/archive-sync/pkg/queue"
)

type fakeStatusReader struct {
	status *queue.TaskStatus
}

func (f *fakeStatusReader) GetTaskStatus(ctx context.Context, itemID string) (*queue.TaskStatus, error) {
	if f.status == nil || f.status.ItemID != itemID {
		return nil, apperr.NotFound("queue.getTaskStatus", nil)
	}
	return f.status, nil
}

func newTasksRouter(reader TaskStatusReader) *gin.Engine {
	h := NewTasksHandler(reader, logger.NewTestLogger())
	r := gin.New()
	r.GET("/tasks/:id", h.GetStatus)
	return r
}

func TestGetTaskStatus(t *testing.T) {
	reader := &fakeStatusReader{status: &queue.TaskStatus{
		ItemID:     "item-1",
		Type:       queue.TaskTypeIndexUpsert,
		Status:     "completed",
		EnqueuedAt: time.Now(),
	}}
	r := newTasksRouter(reader)

	req := httptest.NewRequest(http.MethodGet, "/tasks/item-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status queue.TaskStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "completed", status.Status)
}

func TestGetTaskStatusExpired(t *testing.T) {
	r := newTasksRouter(&fakeStatusReader{})

	req := httptest.NewRequest(http.MethodGet, "/tasks/item-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
