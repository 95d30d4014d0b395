package handler

import (
	"net/http"
	"strconv"

	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/repository"
	"github.com/brewops/schemasync/internal/service"
	"github.com/gin-gonic/gin"
)

// PageHandler handles page catalog endpoints, including the single-page
// fetch entry point.
type PageHandler struct {
	fetchService *service.FetchService
	pages        *repository.PageRepository
}

// NewPageHandler creates a new page handler.
// Parameters:
//   - fetchService: content fetch service.
//   - pages: page repository for catalog reads.
// Returns:
//   - *PageHandler: initialized handler.
func NewPageHandler(fetchService *service.FetchService, pages *repository.PageRepository) *PageHandler {
	return &PageHandler{
		fetchService: fetchService,
		pages:        pages,
	}
}

// FetchPage handles POST /api/v1/pages/:id/fetch. The response status
// distinguishes bad request, unknown page, upstream failure, and internal
// failure per the pipeline's error kinds.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *PageHandler) FetchPage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Page ID is required",
		})
		return
	}

	result, err := h.fetchService.Fetch(c.Request.Context(), id)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case domain.IsNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case domain.IsUpstreamFetch(err):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			// Configuration and persistence failures are internal.
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"content":         result.Content,
		"content_hash":    result.ContentHash,
		"content_changed": result.Changed,
		"fetch_url":       result.FetchURL,
		"content_length":  result.ContentLength,
		"fetched_at":      result.FetchedAt,
	})
}

// GetPage handles GET /api/v1/pages/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *PageHandler) GetPage(c *gin.Context) {
	page, err := h.pages.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Page not found",
		})
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdatePageStatusRequest is the lifecycle-status update payload.
type UpdatePageStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePageStatus handles PUT /api/v1/pages/:id/status. The dashboard moves
// pages through the schema lifecycle with this; the pipeline never changes
// lifecycle status on its own.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *PageHandler) UpdatePageStatus(c *gin.Context) {
	var req UpdatePageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	status := domain.PageStatus(req.Status)
	switch status {
	case domain.PageStatusNotStarted, domain.PageStatusInProgress, domain.PageStatusLive:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid status: " + req.Status,
		})
		return
	}

	id := c.Param("id")
	if _, err := h.pages.GetByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Page not found",
		})
		return
	}

	if err := h.pages.UpdateStatus(c.Request.Context(), id, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update status: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PageStats handles GET /api/v1/pages/stats, the dashboard's lifecycle
// breakdown.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *PageHandler) PageStats(c *gin.Context) {
	stats := make(map[string]int64)
	for _, status := range []domain.PageStatus{
		domain.PageStatusNotStarted,
		domain.PageStatusInProgress,
		domain.PageStatusLive,
	} {
		count, err := h.pages.CountByStatus(c.Request.Context(), status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to count pages: " + err.Error(),
			})
			return
		}
		stats[string(status)] = count
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListPages handles GET /api/v1/pages.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *PageHandler) ListPages(c *gin.Context) {
	siteDomain := c.Query("domain")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	pages, err := h.pages.List(c.Request.Context(), domain.SiteDomain(siteDomain), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list pages: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pages": pages,
	})
}
