package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/turath/archive-sync/api/handlers"
	"github.com/turath/archive-sync/api/middleware"
)

// SetupRoutes wires all endpoints under /api/v1.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")

	archive := v1.Group("/archive")
	{
		archive.POST("/upload", h.Archive.Upload)
		archive.POST("/batch", h.Archive.UploadBatch)
		archive.GET("/items", h.Archive.ListItems)
		archive.GET("/items/:slug", h.Archive.GetBySlug)
		archive.GET("/featured", h.Archive.Featured)
		archive.POST("/insights", h.Insights.Generate)
		if h.Tasks != nil {
			archive.GET("/tasks/:id", h.Tasks.GetStatus)
		}
	}

	v1.GET("/search", h.Search.Search)
}
