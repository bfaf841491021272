package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) timerResponse(c *gin.Context, habitID string, changed bool) {
	c.JSON(http.StatusOK, gin.H{
		"changed": changed,
		"timer":   h.tracker.GetHabitTimerState(habitID),
	})
}

func (h *Handler) GetTimer(c *gin.Context) {
	habit, ok := h.habitParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"timer": h.tracker.GetHabitTimerState(habit.ID)})
}

func (h *Handler) StartTimer(c *gin.Context) {
	habit, ok := h.habitParam(c)
	if !ok {
		return
	}
	if !habit.IsTimed() {
		writeError(c, badRequest("habit_not_timed", "habit has no duration"))
		return
	}
	h.timerResponse(c, habit.ID, h.tracker.StartHabitTimer(habit.ID))
}

func (h *Handler) PauseTimer(c *gin.Context) {
	if habit, ok := h.habitParam(c); ok {
		h.timerResponse(c, habit.ID, h.tracker.PauseHabitTimer(habit.ID))
	}
}

func (h *Handler) ResumeTimer(c *gin.Context) {
	if habit, ok := h.habitParam(c); ok {
		h.timerResponse(c, habit.ID, h.tracker.ResumeHabitTimer(habit.ID))
	}
}

func (h *Handler) StopTimer(c *gin.Context) {
	habit, ok := h.habitParam(c)
	if !ok {
		return
	}
	var req stopRequest
	// an empty body stops without completing
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		invalidJSON(c)
		return
	}
	changed := h.tracker.StopHabitTimer(habit.ID, req.Completed)
	c.JSON(http.StatusOK, gin.H{
		"changed":   changed,
		"completed": h.tracker.GetHabitCompletionStatus(habit.ID, h.tracker.Today()),
		"history":   h.tracker.GetHabitHistory(habit.ID),
	})
}

func (h *Handler) SaveProgress(c *gin.Context) {
	habit, ok := h.habitParam(c)
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Progress == nil {
		writeError(c, badRequest("invalid_progress", "progress is required"))
		return
	}
	h.tracker.SaveTimerProgress(habit.ID, *req.Progress)
	c.JSON(http.StatusOK, gin.H{"history": h.tracker.GetHabitHistory(habit.ID)})
}

func (h *Handler) ListTimers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timers": h.tracker.ListTimers()})
}
