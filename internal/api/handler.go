package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/tracker"
	"github.com/julianstephens/habitline/internal/utils"
)

// Handler exposes a Tracker over HTTP
type Handler struct {
	tracker *tracker.Tracker
}

func NewHandler(t *tracker.Tracker) *Handler {
	return &Handler{tracker: t}
}

type habitRequest struct {
	Name            string           `json:"name"`
	Frequency       models.Frequency `json:"frequency"`
	CategoryID      string           `json:"category_id"`
	Time            string           `json:"time"`
	ReminderEnabled *bool            `json:"reminder_enabled"`
	Icon            string           `json:"icon"`
	Duration        *int             `json:"duration"`
}

func (r habitRequest) habit(id string) models.Habit {
	freq := r.Frequency
	if freq.Type == "" {
		freq = models.Daily()
	}
	return models.Habit{
		ID:              id,
		Name:            r.Name,
		Frequency:       freq,
		CategoryID:      r.CategoryID,
		Time:            r.Time,
		ReminderEnabled: r.ReminderEnabled,
		Icon:            r.Icon,
		Duration:        r.Duration,
	}
}

type habitDetail struct {
	Habit          models.Habit       `json:"habit"`
	CompletedToday bool               `json:"completed_today"`
	Streak         int                `json:"streak"`
	CompletionRate int                `json:"completion_rate"`
	Timer          *models.TimerState `json:"timer"`
}

type noteRequest struct {
	Note string `json:"note"`
}

type stopRequest struct {
	Completed bool `json:"completed"`
}

type progressRequest struct {
	Progress *float64 `json:"progress"`
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type settingsRequest struct {
	RemindersEnabled *bool   `json:"reminders_enabled"`
	Username         *string `json:"username"`
}

type usernameRequest struct {
	Username string `json:"username"`
}

type appStateRequest struct {
	State constants.AppState `json:"state"`
}

// dateParam returns ?date=, defaulting to today
func (h *Handler) dateParam(c *gin.Context) (string, bool) {
	date := c.Query("date")
	if date == "" {
		return h.tracker.Today(), true
	}
	if !utils.ValidateDate(date) {
		writeError(c, badRequest("invalid_date", "date must be YYYY-MM-DD"))
		return "", false
	}
	return date, true
}

// habitParam resolves :id or writes a 404
func (h *Handler) habitParam(c *gin.Context) (models.Habit, bool) {
	habit, ok := h.tracker.GetHabit(c.Param("id"))
	if !ok {
		writeError(c, notFound("habit_not_found", "habit not found"))
		return models.Habit{}, false
	}
	return habit, true
}

func (h *Handler) ListHabits(c *gin.Context) {
	includeArchived := c.Query("archived") == "true"
	c.JSON(http.StatusOK, gin.H{"habits": h.tracker.ListHabits(includeArchived)})
}

func (h *Handler) CreateHabit(c *gin.Context) {
	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	habit, err := h.tracker.AddHabit(req.habit(""))
	if err != nil {
		writeError(c, fromError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"habit": habit})
}

func (h *Handler) GetHabit(c *gin.Context) {
	habit, ok := h.habitParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, habitDetail{
		Habit:          habit,
		CompletedToday: h.tracker.GetHabitCompletionStatus(habit.ID, h.tracker.Today()),
		Streak:         h.tracker.GetHabitStreak(habit.ID),
		CompletionRate: h.tracker.GetCompletionRate(habit.ID),
		Timer:          h.tracker.GetHabitTimerState(habit.ID),
	})
}

func (h *Handler) UpdateHabit(c *gin.Context) {
	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	habit, err := h.tracker.UpdateHabit(req.habit(c.Param("id")))
	if err != nil {
		writeError(c, fromError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

func (h *Handler) DeleteHabit(c *gin.Context) {
	if err := h.tracker.DeleteHabit(c.Param("id")); err != nil {
		writeError(c, fromError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ArchiveHabit(c *gin.Context) {
	h.setArchived(c, h.tracker.ArchiveHabit)
}

func (h *Handler) UnarchiveHabit(c *gin.Context) {
	h.setArchived(c, h.tracker.UnarchiveHabit)
}

func (h *Handler) setArchived(c *gin.Context, fn func(string) error) {
	if err := fn(c.Param("id")); err != nil {
		writeError(c, fromError(err))
		return
	}
	habit, _ := h.tracker.GetHabit(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

func (h *Handler) ToggleCompletion(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	completed, err := h.tracker.ToggleHabitCompletion(c.Param("id"), date)
	if err != nil {
		writeError(c, fromError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "completed": completed})
}

func (h *Handler) CompletionStatus(c *gin.Context) {
	habit, ok := h.habitParam(c)
	if !ok {
		return
	}
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	entry, _ := h.tracker.GetCompletionEntry(habit.ID, date)
	c.JSON(http.StatusOK, gin.H{"date": date, "completed": entry.Completed, "notes": entry.Notes})
}

func (h *Handler) SetNote(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	if err := h.tracker.SetCompletionNote(c.Param("id"), date, req.Note); err != nil {
		writeError(c, fromError(err))
		return
	}
	entry, _ := h.tracker.GetCompletionEntry(c.Param("id"), date)
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

func (h *Handler) Streak(c *gin.Context) {
	habit, ok := h.habitParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"streak":      h.tracker.GetHabitStreak(habit.ID),
		"best_streak": h.tracker.GetBestStreak(habit.ID),
	})
}

func (h *Handler) CompletionRate(c *gin.Context) {
	habit, ok := h.habitParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"completion_rate": h.tracker.GetCompletionRate(habit.ID),
		"window_days":     constants.CompletionRateWindow,
	})
}

func (h *Handler) History(c *gin.Context) {
	habit, ok := h.habitParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": h.tracker.GetHabitHistory(habit.ID)})
}

func (h *Handler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.tracker.ListCategories()})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	category, err := h.tracker.AddCategory(req.Name, req.Color)
	if err != nil {
		writeError(c, fromError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	category, err := h.tracker.UpdateCategory(models.Category{ID: c.Param("id"), Name: req.Name, Color: req.Color})
	if err != nil {
		writeError(c, fromError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.tracker.DeleteCategory(c.Param("id")); err != nil {
		writeError(c, fromError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) settingsBody() gin.H {
	return gin.H{
		"username":          h.tracker.Username(),
		"reminders_enabled": h.tracker.Settings().RemindersEnabled,
		"weekly_reset_day":  h.tracker.WeeklyResetDay().String(),
	}
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.settingsBody()})
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	if req.RemindersEnabled != nil {
		h.tracker.SetGlobalRemindersEnabled(*req.RemindersEnabled)
	}
	if req.Username != nil {
		h.tracker.SetUsername(*req.Username)
	}
	c.JSON(http.StatusOK, gin.H{"settings": h.settingsBody()})
}

func (h *Handler) SetUsername(c *gin.Context) {
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	h.tracker.SetUsername(req.Username)
	c.JSON(http.StatusOK, gin.H{"username": h.tracker.Username()})
}

func (h *Handler) SetAppState(c *gin.Context) {
	var req appStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}
	if req.State != constants.AppStateActive && req.State != constants.AppStateBackground {
		writeError(c, badRequest("invalid_app_state", "state must be active or background"))
		return
	}
	h.tracker.SetAppState(req.State)
	c.JSON(http.StatusOK, gin.H{"state": h.tracker.AppState()})
}
