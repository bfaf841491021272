package models

// CompletionEntry records whether a habit was done on a specific day
type CompletionEntry struct {
	ID        string `json:"id"`
	HabitID   string `json:"habit_id"`
	Date      string `json:"date"` // YYYY-MM-DD format
	Completed bool   `json:"completed"`
	Notes     string `json:"notes,omitempty"`
}

// HistoryRecord is the durable trace of partial or complete engagement with a habit on a day
type HistoryRecord struct {
	Date      string  `json:"date"` // YYYY-MM-DD format
	Progress  float64 `json:"progress"`
	Completed bool    `json:"completed"`
}
