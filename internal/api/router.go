// Package api serves the tracker as a JSON HTTP API.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitline/internal/constants"
)

func NewRouter(handler *Handler, auth *Auth, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": constants.Version})
	})

	api := engine.Group("/api")
	api.Use(auth.Middleware())

	habits := api.Group("/habits")
	habits.GET("", handler.ListHabits)
	habits.POST("", handler.CreateHabit)
	habits.GET("/:id", handler.GetHabit)
	habits.PUT("/:id", handler.UpdateHabit)
	habits.DELETE("/:id", handler.DeleteHabit)
	habits.POST("/:id/archive", handler.ArchiveHabit)
	habits.POST("/:id/unarchive", handler.UnarchiveHabit)
	habits.POST("/:id/toggle", handler.ToggleCompletion)
	habits.GET("/:id/status", handler.CompletionStatus)
	habits.PUT("/:id/note", handler.SetNote)
	habits.GET("/:id/streak", handler.Streak)
	habits.GET("/:id/completion-rate", handler.CompletionRate)
	habits.GET("/:id/history", handler.History)

	habits.GET("/:id/timer", handler.GetTimer)
	habits.POST("/:id/timer/start", handler.StartTimer)
	habits.POST("/:id/timer/pause", handler.PauseTimer)
	habits.POST("/:id/timer/resume", handler.ResumeTimer)
	habits.POST("/:id/timer/stop", handler.StopTimer)
	habits.POST("/:id/timer/progress", handler.SaveProgress)
	api.GET("/timers", handler.ListTimers)

	api.GET("/today", handler.Today)
	api.GET("/completed", handler.Completed)
	api.GET("/progress/daily", handler.DailyProgress)
	api.GET("/progress/weekly", handler.WeeklyProgress)
	api.GET("/stats/categories", handler.CategoryStats)

	categories := api.Group("/categories")
	categories.GET("", handler.ListCategories)
	categories.POST("", handler.CreateCategory)
	categories.PUT("/:id", handler.UpdateCategory)
	categories.DELETE("/:id", handler.DeleteCategory)

	api.GET("/settings", handler.GetSettings)
	api.PUT("/settings", handler.UpdateSettings)
	api.PUT("/username", handler.SetUsername)
	api.POST("/app-state", handler.SetAppState)

	return engine
}
