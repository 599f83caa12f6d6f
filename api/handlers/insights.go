package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/internal/service/insights"
	"github.com/turath/archive-sync/pkg/logger"
)

type InsightsHandler struct {
	service *insights.Service
	logger  logger.Logger
}

func NewInsightsHandler(service *insights.Service, log logger.Logger) *InsightsHandler {
	return &InsightsHandler{service: service, logger: log}
}

type insightsRequest struct {
	ID     string `json:"id"`
	Locale string `json:"locale"`
}

// Generate produces and persists insight text for one item and locale.
func (h *InsightsHandler) Generate(c *gin.Context) {
	var req insightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   err.Error(),
			Message: "Invalid request body",
		})
		return
	}
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "no item id provided",
			Message: "Missing item id",
		})
		return
	}

	locale := models.Locale(req.Locale)
	if locale == "" {
		locale = models.LocaleEN
	}

	text, err := h.service.Generate(c.Request.Context(), req.ID, locale)
	if err != nil {
		writeError(c, h.logger, "Failed to generate insights", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"insights": text,
	})
}
