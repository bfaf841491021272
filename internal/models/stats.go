package models

// DayProgress summarises one day of scheduled habits
type DayProgress struct {
	Date      string `json:"date"`
	Progress  int    `json:"progress"`
	Scheduled int    `json:"scheduled"`
	Completed int    `json:"completed"`
}

// CategoryStats aggregates the habits of one category
type CategoryStats struct {
	CategoryID            string `json:"category_id"`
	Name                  string `json:"name"`
	Color                 string `json:"color"`
	HabitCount            int    `json:"habit_count"`
	CompletedToday        int    `json:"completed_today"`
	AverageCompletionRate int    `json:"average_completion_rate"`
}
