package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kidtimer/internal/service"
)

type TimerSessionHandler struct {
	sessionService *service.TimerSessionService
}

type createSessionRequest struct {
	PresetID      string `json:"presetId"`
	PresetLabel   string `json:"presetLabel"`
	TotalDuration int    `json:"totalDuration"`
}

type updateSessionRequest struct {
	TimeSpent int `json:"timeSpent"`
	Completed int `json:"completed"`
}

func NewTimerSessionHandler(sessionService *service.TimerSessionService) *TimerSessionHandler {
	return &TimerSessionHandler{sessionService: sessionService}
}

func (h *TimerSessionHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	session, apiErr := h.sessionService.Begin(c.Request.Context(), userID, service.BeginSessionInput{
		PresetID:      req.PresetID,
		PresetLabel:   req.PresetLabel,
		TotalDuration: req.TotalDuration,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (h *TimerSessionHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	session, apiErr := h.sessionService.Finish(c.Request.Context(), userID, c.Param("id"), service.FinishSessionInput{
		TimeSpent: req.TimeSpent,
		Completed: req.Completed,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *TimerSessionHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	limit := service.DefaultHistoryLimit
	rawLimit := c.Query("limit")
	if rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil {
			limit = parsed
		}
	}

	sessions, apiErr := h.sessionService.History(c.Request.Context(), userID, limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *TimerSessionHandler) Summary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	summary, apiErr := h.sessionService.Summary(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
