package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/routinely/internal/models"
)

func setupTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func setupTestJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.json")

	store := NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}

	return store
}

func testHabit(id, name string) models.Habit {
	return models.Habit{
		ID:   id,
		Name: name,
		Schedule: models.ScheduleSpec{
			Schedule: models.Weekly{DueDaysOfWeek: []time.Weekday{time.Monday, time.Thursday}},
		},
		StartDate:              "2024-01-01",
		SessionsPerDay:         1,
		BacklogEnabled:         true,
		CompletingAheadEnabled: true,
		CreatedAt:              time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC),
	}
}

// eachProvider runs a subtest against both storage backends.
func eachProvider(t *testing.T, fn func(t *testing.T, store Provider)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestSQLiteStore(t)) })
	t.Run("json", func(t *testing.T) { fn(t, setupTestJSONStore(t)) })
}

func TestHabitRoundTrip(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		habit := testHabit("habit-1", "Morning run")
		if err := store.AddHabit(habit); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}

		got, err := store.GetHabit(habit.ID)
		if err != nil {
			t.Fatalf("failed to get habit: %v", err)
		}
		if got.Name != habit.Name {
			t.Errorf("expected name %q, got %q", habit.Name, got.Name)
		}
		if got.StartDate != habit.StartDate {
			t.Errorf("expected start date %s, got %s", habit.StartDate, got.StartDate)
		}

		weekly, ok := got.Schedule.Schedule.(models.Weekly)
		if !ok {
			t.Fatalf("schedule did not survive the round trip: %T", got.Schedule.Schedule)
		}
		if len(weekly.DueDaysOfWeek) != 2 || weekly.DueDaysOfWeek[0] != time.Monday {
			t.Errorf("unexpected due days: %v", weekly.DueDaysOfWeek)
		}
	})
}

func TestHabitSoftDelete(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		habit := testHabit("habit-1", "Read")
		if err := store.AddHabit(habit); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}

		if err := store.DeleteHabit(habit.ID); err != nil {
			t.Fatalf("failed to delete habit: %v", err)
		}

		// Soft-deleted habits are hidden from lookups and listings
		if _, err := store.GetHabit(habit.ID); err == nil {
			t.Error("expected error when getting deleted habit, got nil")
		}

		habits, err := store.GetAllHabits(false, false)
		if err != nil {
			t.Fatalf("failed to list habits: %v", err)
		}
		for _, h := range habits {
			if h.ID == habit.ID {
				t.Error("deleted habit should not appear in listings")
			}
		}

		// But remain visible when explicitly requested
		habits, err = store.GetAllHabits(false, true)
		if err != nil {
			t.Fatalf("failed to list habits with deleted: %v", err)
		}
		if len(habits) != 1 {
			t.Errorf("expected 1 habit including deleted, got %d", len(habits))
		}
	})
}

func TestHabitRestore(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		habit := testHabit("habit-1", "Stretch")
		if err := store.AddHabit(habit); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}

		if err := store.RestoreHabit(habit.ID); err == nil {
			t.Error("expected error restoring a habit that is not deleted")
		}

		if err := store.DeleteHabit(habit.ID); err != nil {
			t.Fatalf("failed to delete habit: %v", err)
		}
		if err := store.RestoreHabit(habit.ID); err != nil {
			t.Fatalf("failed to restore habit: %v", err)
		}

		got, err := store.GetHabit(habit.ID)
		if err != nil {
			t.Fatalf("failed to get restored habit: %v", err)
		}
		if got.Name != habit.Name {
			t.Errorf("expected name %q after restore, got %q", habit.Name, got.Name)
		}
	})
}

func TestHabitArchive(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		if err := store.AddHabit(testHabit("habit-1", "Active")); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}
		if err := store.AddHabit(testHabit("habit-2", "Shelved")); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}

		if err := store.ArchiveHabit("habit-2"); err != nil {
			t.Fatalf("failed to archive habit: %v", err)
		}

		habits, err := store.GetAllHabits(false, false)
		if err != nil {
			t.Fatalf("failed to list habits: %v", err)
		}
		if len(habits) != 1 || habits[0].ID != "habit-1" {
			t.Errorf("expected only the active habit, got %v", habits)
		}

		habits, err = store.GetAllHabits(true, false)
		if err != nil {
			t.Fatalf("failed to list habits with archived: %v", err)
		}
		if len(habits) != 2 {
			t.Errorf("expected 2 habits including archived, got %d", len(habits))
		}
	})
}

func TestListingsSortedByName(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		for _, h := range []models.Habit{
			testHabit("habit-1", "Zazen"),
			testHabit("habit-2", "Aerobics"),
			testHabit("habit-3", "Meditate"),
		} {
			if err := store.AddHabit(h); err != nil {
				t.Fatalf("failed to add habit: %v", err)
			}
		}

		habits, err := store.GetAllHabits(false, false)
		if err != nil {
			t.Fatalf("failed to list habits: %v", err)
		}
		var names []string
		for _, h := range habits {
			names = append(names, h.Name)
		}
		if got := strings.Join(names, ","); got != "Aerobics,Meditate,Zazen" {
			t.Errorf("listings must be sorted by name, got %s", got)
		}
	})
}

func TestCompletionUpsert(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		habit := testHabit("habit-1", "Journal")
		if err := store.AddHabit(habit); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}

		rec := models.CompletionRecord{
			HabitID:        habit.ID,
			Day:            "2024-01-15",
			TimesCompleted: 1,
			CreatedAt:      time.Now().UTC(),
			UpdatedAt:      time.Now().UTC(),
		}
		if err := store.UpsertCompletion(rec); err != nil {
			t.Fatalf("failed to record completion: %v", err)
		}

		// A second record for the same day replaces the count
		rec.TimesCompleted = 3
		if err := store.UpsertCompletion(rec); err != nil {
			t.Fatalf("failed to update completion: %v", err)
		}

		records, err := store.GetCompletions(habit.ID)
		if err != nil {
			t.Fatalf("failed to get completions: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record after upsert, got %d", len(records))
		}
		if records[0].TimesCompleted != 3 {
			t.Errorf("expected count 3, got %v", records[0].TimesCompleted)
		}
	})
}

func TestCompletionUnknownHabitRejected(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		err := store.UpsertCompletion(models.CompletionRecord{
			HabitID:        "missing",
			Day:            "2024-01-15",
			TimesCompleted: 1,
		})
		if err == nil {
			t.Error("expected error recording completion for unknown habit")
		}
	})
}

func TestCompletionsSortedByDay(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		habit := testHabit("habit-1", "Walk")
		if err := store.AddHabit(habit); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}

		for _, day := range []string{"2024-03-10", "2024-01-05", "2024-02-20"} {
			err := store.UpsertCompletion(models.CompletionRecord{
				HabitID:        habit.ID,
				Day:            day,
				TimesCompleted: 1,
			})
			if err != nil {
				t.Fatalf("failed to record completion: %v", err)
			}
		}

		records, err := store.GetCompletions(habit.ID)
		if err != nil {
			t.Fatalf("failed to get completions: %v", err)
		}
		for i := 1; i < len(records); i++ {
			if records[i-1].Day > records[i].Day {
				t.Errorf("completions out of order: %s before %s", records[i-1].Day, records[i].Day)
			}
		}
	})
}

func TestDeleteCompletion(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		habit := testHabit("habit-1", "Piano")
		if err := store.AddHabit(habit); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}

		if err := store.DeleteCompletion(habit.ID, "2024-01-15"); err == nil {
			t.Error("expected error deleting a completion that was never recorded")
		}

		err := store.UpsertCompletion(models.CompletionRecord{
			HabitID:        habit.ID,
			Day:            "2024-01-15",
			TimesCompleted: 1,
		})
		if err != nil {
			t.Fatalf("failed to record completion: %v", err)
		}
		if err := store.DeleteCompletion(habit.ID, "2024-01-15"); err != nil {
			t.Fatalf("failed to delete completion: %v", err)
		}

		records, err := store.GetCompletions(habit.ID)
		if err != nil {
			t.Fatalf("failed to get completions: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no completions after delete, got %d", len(records))
		}
	})
}

func TestVacations(t *testing.T) {
	eachProvider(t, func(t *testing.T, store Provider) {
		habit := testHabit("habit-1", "Swim")
		if err := store.AddHabit(habit); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}

		if err := store.AddVacation(models.Vacation{ID: "vac-1", HabitID: "missing", StartDay: "2024-02-01"}); err == nil {
			t.Error("expected error adding vacation for unknown habit")
		}

		for _, v := range []models.Vacation{
			{ID: "vac-2", HabitID: habit.ID, StartDay: "2024-03-01", EndDay: "2024-03-07"},
			{ID: "vac-3", HabitID: habit.ID, StartDay: "2024-01-10", EndDay: ""},
		} {
			if err := store.AddVacation(v); err != nil {
				t.Fatalf("failed to add vacation: %v", err)
			}
		}

		vacations, err := store.GetVacations(habit.ID)
		if err != nil {
			t.Fatalf("failed to get vacations: %v", err)
		}
		if len(vacations) != 2 {
			t.Fatalf("expected 2 vacations, got %d", len(vacations))
		}
		if vacations[0].ID != "vac-3" {
			t.Errorf("vacations must be sorted by start day, got %s first", vacations[0].ID)
		}
		// Open-ended vacation keeps its empty end day
		if vacations[0].EndDay != "" {
			t.Errorf("expected open-ended vacation, got end day %q", vacations[0].EndDay)
		}

		if err := store.DeleteVacation("vac-2"); err != nil {
			t.Fatalf("failed to delete vacation: %v", err)
		}
		vacations, err = store.GetVacations(habit.ID)
		if err != nil {
			t.Fatalf("failed to get vacations: %v", err)
		}
		if len(vacations) != 1 {
			t.Errorf("expected 1 vacation after delete, got %d", len(vacations))
		}
	})
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := store.AddHabit(testHabit("habit-1", "Persist")); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	reopened := NewSQLiteStore(dbPath)
	if err := reopened.Load(); err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	habit, err := reopened.GetHabit("habit-1")
	if err != nil {
		t.Fatalf("failed to get habit after reopen: %v", err)
	}
	if habit.Name != "Persist" {
		t.Errorf("expected name Persist, got %q", habit.Name)
	}
}

func TestJSONLoadWithoutInitFails(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
	err := store.Load()
	if err == nil {
		t.Fatal("expected error loading uninitialized storage")
	}
	if !strings.Contains(err.Error(), "routinely init") {
		t.Errorf("error should point at 'routinely init', got: %v", err)
	}
}

func TestSQLiteLoadWithoutInitFails(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if err == nil {
		t.Fatal("expected error loading uninitialized storage")
	}
	if !strings.Contains(err.Error(), "routinely init") {
		t.Errorf("error should point at 'routinely init', got: %v", err)
	}
}
