package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/internal/service/ingest"
	"github.com/turath/archive-sync/internal/service/query"
	"github.com/turath/archive-sync/pkg/logger"
)

type ArchiveHandler struct {
	orchestrator ingest.Orchestrator
	facade       *query.Facade
	logger       logger.Logger
}

func NewArchiveHandler(orchestrator ingest.Orchestrator, facade *query.Facade, log logger.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		orchestrator: orchestrator,
		facade:       facade,
		logger:       log,
	}
}

// UploadResponse reports one ingestion. Degraded is set when the item
// was persisted but search visibility is delayed.
type UploadResponse struct {
	Success    bool                `json:"success"`
	Item       *models.ArchiveItem `json:"item"`
	BinaryURL  string              `json:"binaryUrl"`
	Sinks      []string            `json:"sinks"`
	Indexed    bool                `json:"indexed"`
	Degraded   bool                `json:"degraded"`
	IndexError string              `json:"indexError,omitempty"`
	Task       *models.UploadTask  `json:"task"`
}

// Upload ingests one file.
func (h *ArchiveHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "no file provided",
			Message: "Invalid file upload",
		})
		return
	}
	defer file.Close()

	locale := models.Locale(c.PostForm("locale"))
	contentType := header.Header.Get("Content-Type")

	result, err := h.orchestrator.Ingest(c.Request.Context(), file, header.Size, header.Filename, contentType, locale)
	if err != nil {
		writeError(c, h.logger, "Failed to ingest file", err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse(result))
}

// UploadBatch ingests several files sequentially and reports per-file
// outcomes.
func (h *ArchiveHandler) UploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   err.Error(),
			Message: "Invalid form data",
		})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "no files provided",
			Message: "Invalid file upload",
		})
		return
	}

	batch := make([]ingest.BatchFile, len(files))
	for i, header := range files {
		header := header
		batch[i] = ingest.BatchFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Open: func() (io.ReadCloser, error) {
				return openMultipart(header)
			},
		}
	}

	results := h.orchestrator.IngestBatch(c.Request.Context(), batch)

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Processed %d files", len(files)),
		"results": results,
	})
}

// ListItems returns a gallery page ordered by creation time descending.
func (h *ArchiveHandler) ListItems(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	page, err := h.facade.ListPage(c.Request.Context(), offset, limit)
	if err != nil {
		writeError(c, h.logger, "Failed to list items", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetBySlug returns one item for detail rendering, always canonically.
func (h *ArchiveHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")

	item, err := h.facade.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		writeError(c, h.logger, "Failed to get item", err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Featured returns curated items in manual order.
func (h *ArchiveHandler) Featured(c *gin.Context) {
	items, err := h.facade.Featured(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "Failed to list featured items", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func uploadResponse(result *ingest.Result) UploadResponse {
	return UploadResponse{
		Success:    true,
		Item:       result.Item,
		BinaryURL:  result.BinaryURL,
		Sinks:      result.Sinks,
		Indexed:    result.Indexed,
		Degraded:   result.Degraded(),
		IndexError: result.IndexError,
		Task:       result.Task,
	}
}

func openMultipart(header *multipart.FileHeader) (io.ReadCloser, error) {
	return header.Open()
}
