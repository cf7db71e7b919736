package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pomodoro/desktop/internal/engine"
	"pomodoro/desktop/internal/service"
)

type PomodoroHandler struct {
	timerService *service.TimerService
}

type versionRequest struct {
	BaseVersion int `json:"baseVersion"`
}

type updateProfileRequest struct {
	Name                      string `json:"name"`
	WorkDurationSeconds       int    `json:"workDurationSeconds"`
	ShortBreakDurationSeconds int    `json:"shortBreakDurationSeconds"`
	LongBreakDurationSeconds  int    `json:"longBreakDurationSeconds"`
	CyclesBeforeLongBreak     int    `json:"cyclesBeforeLongBreak"`
	AutoStartNextPhase        *bool  `json:"autoStartNextPhase"`
}

func NewPomodoroHandler(timerService *service.TimerService) *PomodoroHandler {
	return &PomodoroHandler{timerService: timerService}
}

func (h *PomodoroHandler) GetState(c *gin.Context) {
	state := h.timerService.GetState(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// Command returns a handler applying cmd. The body is optional; when it
// carries a positive baseVersion the command is rejected with 409 if the
// state has moved on.
func (h *PomodoroHandler) Command(cmd engine.Command) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req versionRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				writeInvalidBody(c)
				return
			}
		}

		result, apiErr := h.timerService.Execute(c.Request.Context(), string(cmd), req.BaseVersion)
		if apiErr != nil {
			writeError(c, apiErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"applied": result.Applied, "state": result.State})
	}
}

func (h *PomodoroHandler) GetProfile(c *gin.Context) {
	state := h.timerService.GetState(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"profile": gin.H{
		"name":                      state.ProfileName,
		"workDurationSeconds":       state.WorkDurationSeconds,
		"shortBreakDurationSeconds": state.ShortBreakDurationSeconds,
		"longBreakDurationSeconds":  state.LongBreakDurationSeconds,
		"cyclesBeforeLongBreak":     state.CyclesBeforeLongBreak,
		"autoStartNextPhase":        state.AutoStartNextPhase,
	}})
}

func (h *PomodoroHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidBody(c)
		return
	}

	state, apiErr := h.timerService.UpdateProfile(c.Request.Context(), service.ProfileInput{
		Name:                      req.Name,
		WorkDurationSeconds:       req.WorkDurationSeconds,
		ShortBreakDurationSeconds: req.ShortBreakDurationSeconds,
		LongBreakDurationSeconds:  req.LongBreakDurationSeconds,
		CyclesBeforeLongBreak:     req.CyclesBeforeLongBreak,
		AutoStartNextPhase:        req.AutoStartNextPhase,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *PomodoroHandler) ListProfiles(c *gin.Context) {
	profiles, apiErr := h.timerService.ListProfiles(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

func (h *PomodoroHandler) GetHistory(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	records, apiErr := h.timerService.GetHistory(c.Request.Context(), limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pomodoros": records})
}

func (h *PomodoroHandler) GetStats(c *gin.Context) {
	days := queryInt(c, "days", 7)
	stats, apiErr := h.timerService.GetStats(c.Request.Context(), days)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
