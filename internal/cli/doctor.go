package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/routinely/internal/backup"
	"github.com/julianstephens/routinely/internal/calendar"
	"github.com/julianstephens/routinely/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storageReachable := false

	// Check 1: storage reachable
	if err := checkStorageReachable(ctx); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
		storageReachable = true
	}

	// Check 2: schema version valid (SQLite only)
	if err := checkSchemaVersion(ctx); err != nil {
		fmt.Printf("❌ Schema version: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Schema version: OK\n")
	}

	// Check 3: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 4: data validation (only if storage is reachable)
	if storageReachable {
		if err := checkValidation(ctx); err != nil {
			fmt.Printf("❌ Data validation: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Data validation: OK\n")
		}
	} else {
		fmt.Printf("⊘ Data validation: SKIPPED (storage not reachable)\n")
	}

	// Check 5: clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	// Check 6: no other routinely process on the same storage
	if err := checkDuplicateProcesses(); err != nil {
		fmt.Printf("⚠ Concurrent processes: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Concurrent processes: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStorageReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	// For SQLite, also run a trivial query against the live handle
	if sqliteStore, ok := ctx.Store.(*storage.SQLiteStore); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func checkSchemaVersion(ctx *Context) error {
	sqliteStore, ok := ctx.Store.(*storage.SQLiteStore)
	if !ok {
		// JSON store has no schema version
		return nil
	}

	db := sqliteStore.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var version int
	if err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > storage.SchemaVersion {
		return fmt.Errorf("schema version %d is newer than this binary supports (%d)",
			version, storage.SchemaVersion)
	}
	if version < storage.SchemaVersion {
		return fmt.Errorf("schema version %d is behind expected %d, run 'routinely init'",
			version, storage.SchemaVersion)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'routinely backup create'")
	}

	return nil
}

func checkValidation(ctx *Context) error {
	habits, err := ctx.Store.GetAllHabits(true, true)
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}

	habitIDs := make(map[string]bool)
	for _, habit := range habits {
		if habitIDs[habit.ID] {
			return fmt.Errorf("duplicate habit ID found: %s", habit.ID)
		}
		habitIDs[habit.ID] = true

		if habit.Schedule.Schedule == nil {
			return fmt.Errorf("habit %s has no schedule", habit.ID)
		}
		if err := habit.Schedule.Schedule.Validate(); err != nil {
			return fmt.Errorf("habit %s has an invalid schedule: %w", habit.ID, err)
		}
		if _, err := calendar.ParseDay(habit.StartDate); err != nil {
			return fmt.Errorf("habit %s has a malformed start date %q", habit.ID, habit.StartDate)
		}
		if habit.SessionsPerDay <= 0 {
			return fmt.Errorf("habit %s has non-positive sessions per day", habit.ID)
		}

		records, err := ctx.Store.GetCompletions(habit.ID)
		if err != nil {
			return fmt.Errorf("failed to get completions for %s: %w", habit.ID, err)
		}
		for _, rec := range records {
			if _, err := calendar.ParseDay(rec.Day); err != nil {
				return fmt.Errorf("completion for %s has malformed day %q", habit.ID, rec.Day)
			}
			if rec.TimesCompleted < 0 {
				return fmt.Errorf("completion for %s on %s has negative count", habit.ID, rec.Day)
			}
		}

		vacations, err := ctx.Store.GetVacations(habit.ID)
		if err != nil {
			return fmt.Errorf("failed to get vacations for %s: %w", habit.ID, err)
		}
		for _, v := range vacations {
			if _, err := calendar.ParseDay(v.StartDay); err != nil {
				return fmt.Errorf("vacation %s has malformed start day %q", v.ID, v.StartDay)
			}
			if v.EndDay != "" {
				if _, err := calendar.ParseDay(v.EndDay); err != nil {
					return fmt.Errorf("vacation %s has malformed end day %q", v.ID, v.EndDay)
				}
				if v.EndDay < v.StartDay {
					return fmt.Errorf("vacation %s ends before it starts", v.ID)
				}
			}
		}
	}

	return nil
}

func checkClockTimezone() error {
	now := time.Now()

	// Sanity range: a clock outside it would corrupt day bookkeeping
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		fmt.Printf("   Note: timezone is UTC\n")
	}

	return nil
}

// checkDuplicateProcesses warns when another routinely instance is
// running, since concurrent writers against the same storage file are
// not supported.
func checkDuplicateProcesses() error {
	processes, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	self := os.Getpid()
	binary := filepath.Base(os.Args[0])
	count := 0
	for _, p := range processes {
		if p.Pid() == self {
			continue
		}
		if p.Executable() == binary {
			count++
		}
	}
	if count > 0 {
		return fmt.Errorf("found %d other %s process(es) - concurrent writes may lose data", count, binary)
	}
	return nil
}
