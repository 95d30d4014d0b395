package handler

import (
	"net/http"

	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/repository"
	"github.com/gin-gonic/gin"
)

// SettingsHandler handles the fetch-settings endpoints.
type SettingsHandler struct {
	settings *repository.SettingsRepository
}

// NewSettingsHandler creates a new settings handler.
// Parameters:
//   - settings: settings repository.
// Returns:
//   - *SettingsHandler: initialized handler.
func NewSettingsHandler(settings *repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// settingsResponse hides the basic-auth password from reads.
type settingsResponse struct {
	BaseURL       string `json:"base_url"`
	BasicAuthUser string `json:"basic_auth_user,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
}

// GetSettings handles GET /api/v1/settings.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Settings not configured",
		})
		return
	}

	c.JSON(http.StatusOK, settingsResponse{
		BaseURL:       settings.BaseURL,
		BasicAuthUser: settings.BasicAuthUser,
		UserAgent:     settings.UserAgent,
	})
}

// UpdateSettingsRequest is the settings-update payload.
type UpdateSettingsRequest struct {
	BaseURL       string `json:"base_url" binding:"required"`
	BasicAuthUser string `json:"basic_auth_user"`
	BasicAuthPass string `json:"basic_auth_pass"`
	UserAgent     string `json:"user_agent"`
}

// UpdateSettings handles PUT /api/v1/settings.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	err := h.settings.Save(c.Request.Context(), &domain.FetchSettings{
		BaseURL:       req.BaseURL,
		BasicAuthUser: req.BasicAuthUser,
		BasicAuthPass: req.BasicAuthPass,
		UserAgent:     req.UserAgent,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save settings: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
