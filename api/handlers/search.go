package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/internal/service/query"
	"github.com/turath/archive-sync/pkg/logger"
)

type SearchHandler struct {
	facade *query.Facade
	logger logger.Logger
}

func NewSearchHandler(facade *query.Facade, log logger.Logger) *SearchHandler {
	return &SearchHandler{facade: facade, logger: log}
}

// Search runs a ranked, locale-scoped query against the index. Zero
// matches is an empty hit list, not an error.
func (h *SearchHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "no query provided",
			Message: "Missing search query",
		})
		return
	}

	locale := models.Locale(c.DefaultQuery("locale", string(models.LocaleEN)))
	if !locale.Valid() {
		locale = models.LocaleEN
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	result, err := h.facade.Search(c.Request.Context(), q, locale, limit)
	if err != nil {
		writeError(c, h.logger, "Search failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hits":               result.Hits,
		"estimatedTotalHits": result.EstimatedTotalHits,
		"processingTimeMs":   result.ProcessingTimeMs,
		"query":              result.Query,
	})
}
