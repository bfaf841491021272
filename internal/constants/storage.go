package constants

// Storage keys, one blob per collection.
const (
	KeyHabits       = "habits"
	KeyCompletions  = "completion_entries"
	KeyCategories   = "categories"
	KeyUsername     = "username"
	KeySettings     = "settings"
	KeyTimers       = "active_timers"
	KeyHistory      = "progress_history"
	KeyBootstrapped = "bootstrapped"
)

// CollectionKeys lists every key owned by the tracker in write order.
var CollectionKeys = []string{
	KeyCategories,
	KeyHabits,
	KeyCompletions,
	KeyTimers,
	KeyHistory,
	KeyUsername,
	KeySettings,
	KeyBootstrapped,
}
