package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/repository"
	"github.com/brewops/schemasync/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunHandler handles batch run endpoints: intake, inspection, and the
// pipeline trigger.
type RunHandler struct {
	runService *service.RunService
	runs       *repository.RunRepository
}

// NewRunHandler creates a new run handler.
// Parameters:
//   - runService: run orchestrator.
//   - runs: run repository for intake and inspection reads.
// Returns:
//   - *RunHandler: initialized handler.
func NewRunHandler(runService *service.RunService, runs *repository.RunRepository) *RunHandler {
	return &RunHandler{
		runService: runService,
		runs:       runs,
	}
}

// RunRowRequest is one spreadsheet-like row of a batch.
type RunRowRequest struct {
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	PageType string `json:"page_type"`
	Category string `json:"category"`
}

// CreateRunRequest is the batch-intake payload.
type CreateRunRequest struct {
	Name string          `json:"name"`
	Rows []RunRowRequest `json:"rows" binding:"required,min=1"`
}

// CreateRun handles POST /api/v1/runs. Rows are stored as pending run items
// in payload order; validation of row contents is the orchestrator's job so
// that bad rows surface as item-level errors, not intake rejections.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	run := &domain.Run{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Status: domain.RunStatusPending,
	}
	for i, row := range req.Rows {
		run.Items = append(run.Items, domain.RunItem{
			ID:        uuid.New().String(),
			RunID:     run.ID,
			RowNumber: i + 1,
			Domain:    domain.SiteDomain(row.Domain),
			Path:      row.Path,
			PageType:  row.PageType,
			Category:  row.Category,
		})
	}

	if err := h.runs.CreateWithItems(c.Request.Context(), run); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create run: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, run)
}

// ProcessRun handles POST /api/v1/runs/:id/process, the pipeline trigger.
// A completed sweep answers {success: true} even when individual rows
// failed; row outcomes live on the items.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RunHandler) ProcessRun(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Run ID is required",
		})
		return
	}

	stats, err := h.runService.Process(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Run not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// GetRun handles GET /api/v1/runs/:id, returning the run with its items in
// row order.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RunHandler) GetRun(c *gin.Context) {
	run, err := h.runs.GetWithItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Run not found",
		})
		return
	}

	c.JSON(http.StatusOK, run)
}

// ListRuns handles GET /api/v1/runs.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	runs, err := h.runs.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list runs: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs": runs,
	})
}
