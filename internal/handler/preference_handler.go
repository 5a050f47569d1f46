package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kidtimer/internal/service"
)

type PreferenceHandler struct {
	prefService *service.PreferenceService
}

type updatePreferencesRequest struct {
	LastPresetID          *string `json:"lastPresetId"`
	CustomDurationSeconds *int    `json:"customDurationSeconds"`
	SelectedSoundID       *string `json:"selectedSoundId"`
}

func NewPreferenceHandler(prefService *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefService: prefService}
}

func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	prefs, apiErr := h.prefService.Get(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

func (h *PreferenceHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	prefs, apiErr := h.prefService.Update(c.Request.Context(), userID, service.UpdatePreferencesInput{
		LastPresetID:          req.LastPresetID,
		CustomDurationSeconds: req.CustomDurationSeconds,
		SelectedSoundID:       req.SelectedSoundID,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}
