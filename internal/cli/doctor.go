package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/keyring"
	"github.com/julianstephens/habitline/internal/models"
	"github.com/julianstephens/habitline/internal/storage"
	"github.com/julianstephens/habitline/internal/utils"
)

// schemaVersioned is implemented by the SQL backends
type schemaVersioned interface {
	SchemaVersions() (current, latest int, err error)
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	reachable := false

	if err := checkStorageReachable(ctx); err != nil {
		ctx.printf("%s Storage reachable: FAIL\n", errorStyle.Render("❌"))
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("%s Storage reachable: OK\n", doneStyle.Render("✓"))
		reachable = true
	}

	if reachable {
		if err := checkSchemaVersion(ctx); err != nil {
			ctx.printf("%s Schema version: FAIL\n", errorStyle.Render("❌"))
			ctx.printf("   Error: %v\n", err)
			hasError = true
		} else {
			ctx.printf("%s Schema version: OK\n", doneStyle.Render("✓"))
		}

		if err := checkCollections(ctx); err != nil {
			ctx.printf("%s Data validation: FAIL\n", errorStyle.Render("❌"))
			ctx.printf("   Error: %v\n", err)
			hasError = true
		} else {
			ctx.printf("%s Data validation: OK\n", doneStyle.Render("✓"))
		}
	} else {
		ctx.println("⊘ Schema version: SKIPPED (storage not reachable)")
		ctx.println("⊘ Data validation: SKIPPED (storage not reachable)")
	}

	switch err := checkBackupsPresent(ctx); {
	case errors.Is(err, errBackupUnsupported):
		ctx.println("⊘ Backups present: SKIPPED (not a SQLite database)")
	case err != nil:
		ctx.printf("%s Backups present: WARNING\n", warnStyle.Render("⚠"))
		ctx.printf("   %v\n", err)
	default:
		ctx.printf("%s Backups present: OK\n", doneStyle.Render("✓"))
	}

	if err := checkClockTimezone(ctx); err != nil {
		ctx.printf("%s Clock/timezone: FAIL\n", errorStyle.Render("❌"))
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("%s Clock/timezone: OK\n", doneStyle.Render("✓"))
	}

	if keyring.IsAvailable() {
		ctx.printf("%s OS keyring: OK\n", doneStyle.Render("✓"))
	} else {
		ctx.println("⊘ OS keyring: not available, secrets must come from the environment")
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.println("All diagnostics passed!")
	return nil
}

func checkStorageReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.Keys(context.Background()); err != nil {
		return fmt.Errorf("failed to query storage: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	versioned, ok := ctx.Store.(schemaVersioned)
	if !ok {
		// key-value backends have no schema
		return nil
	}

	current, latest, err := versioned.SchemaVersions()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

// checkCollections decodes every stored collection and cross-checks habit references
func checkCollections(ctx *Context) error {
	var (
		habits      []models.Habit
		categories  []models.Category
		completions []models.CompletionEntry
		timers      map[string]*models.TimerState
		history     map[string][]models.HistoryRecord
		username    string
		settings    models.Settings
		bootstrap   bool
	)
	targets := map[string]interface{}{
		constants.KeyHabits:       &habits,
		constants.KeyCategories:   &categories,
		constants.KeyCompletions:  &completions,
		constants.KeyTimers:       &timers,
		constants.KeyHistory:      &history,
		constants.KeyUsername:     &username,
		constants.KeySettings:     &settings,
		constants.KeyBootstrapped: &bootstrap,
	}

	bg := context.Background()
	for _, key := range constants.CollectionKeys {
		data, err := ctx.Store.LoadBlob(bg, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", key, err)
		}
		if err := json.Unmarshal(data, targets[key]); err != nil {
			return fmt.Errorf("collection %q is not valid: %w", key, err)
		}
	}

	categoryIDs := make(map[string]bool, len(categories))
	for _, c := range categories {
		categoryIDs[c.ID] = true
	}
	habitIDs := make(map[string]bool, len(habits))
	for _, h := range habits {
		if habitIDs[h.ID] {
			return fmt.Errorf("duplicate habit ID found: %s", h.ID)
		}
		habitIDs[h.ID] = true
		if err := h.Validate(); err != nil {
			return fmt.Errorf("habit %s: %w", h.ID, err)
		}
		if len(categories) > 0 && !categoryIDs[h.CategoryID] {
			ctx.printf("   Note: habit %q points at a missing category, it will be reassigned on next load\n", h.Name)
		}
	}
	for _, entry := range completions {
		if !habitIDs[entry.HabitID] {
			return fmt.Errorf("completion %s references unknown habit %s", entry.ID, entry.HabitID)
		}
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr, err := ctx.backupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitline backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := time.Now()
	if ctx.Clock != nil {
		now = ctx.Clock.Now()
	}

	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("unknown timezone %q, set %s to an IANA name such as Europe/Berlin", ctx.Config.Timezone, constants.EnvTimezone)
	}

	if loc := ctx.Config.Location(); loc == time.UTC {
		ctx.println("   Note: timezone is UTC")
	}
	return nil
}
