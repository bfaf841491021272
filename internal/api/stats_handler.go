package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Completed(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "habits": h.tracker.GetCompletedHabitsForDate(date)})
}

// Today lists the habits due on ?date= (default today) with their status
func (h *Handler) Today(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	habits, err := h.tracker.GetHabitsForDate(date)
	if err != nil {
		writeError(c, fromError(err))
		return
	}
	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, gin.H{
			"habit":     habit,
			"completed": h.tracker.GetHabitCompletionStatus(habit.ID, date),
		})
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "habits": items})
}

func (h *Handler) DailyProgress(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	progress, err := h.tracker.GetProgressForDate(date)
	if err != nil {
		writeError(c, fromError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (h *Handler) WeeklyProgress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"days": h.tracker.GetWeeklyProgress()})
}

func (h *Handler) CategoryStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.tracker.GetCategoryStats()})
}
