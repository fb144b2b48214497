package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage"
	_ "modernc.org/sqlite"
)

// setupTestStorage creates a real storage database with one habit and
// one completion so backups have something to carry.
func setupTestStorage(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "routinely.db")

	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize storage: %v", err)
	}

	habit := models.Habit{
		ID:             "habit-1",
		Name:           "Morning run",
		Schedule:       models.ScheduleSpec{Schedule: models.EveryDay{}},
		StartDate:      "2024-01-01",
		SessionsPerDay: 1,
		CreatedAt:      time.Now().UTC(),
	}
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	err := store.UpsertCompletion(models.CompletionRecord{
		HabitID:        habit.ID,
		Day:            "2024-01-05",
		TimesCompleted: 1,
	})
	if err != nil {
		t.Fatalf("failed to record completion: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close storage: %v", err)
	}

	return dbPath
}

func countHabits(t *testing.T, dbPath string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&count); err != nil {
		t.Fatalf("failed to count habits: %v", err)
	}
	return count
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestStorage(t)

	mgr := NewManager(dbPath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		t.Fatalf("backup file was not created: %s", backupPath)
	}

	// The snapshot must be an independently readable database
	if got := countHabits(t, backupPath); got != 1 {
		t.Errorf("expected 1 habit in backup, got %d", got)
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestStorage(t)
	mgr := NewManager(dbPath)

	for i := 0; i < MaxBackups+5; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", MaxBackups, len(backups))
	}

	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at index %d", i)
		}
	}
}

func TestListBackups(t *testing.T) {
	dbPath := setupTestStorage(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Errorf("expected 3 backups, got %d", len(backups))
	}

	for _, b := range backups {
		if b.Path == "" || b.Size == 0 || b.Timestamp.IsZero() {
			t.Errorf("incomplete backup info: %+v", b)
		}
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestStorage(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	// Add a second habit after the snapshot
	store := storage.NewSQLiteStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load storage: %v", err)
	}
	err = store.AddHabit(models.Habit{
		ID:             "habit-2",
		Name:           "Stretch",
		Schedule:       models.ScheduleSpec{Schedule: models.EveryDay{}},
		StartDate:      "2024-02-01",
		SessionsPerDay: 1,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	store.Close()

	if got := countHabits(t, dbPath); got != 2 {
		t.Fatalf("expected 2 habits before restore, got %d", got)
	}

	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	if got := countHabits(t, dbPath); got != 1 {
		t.Errorf("expected 1 habit after restore, got %d", got)
	}
}

func TestRestoreBackupCreatesPreRestoreBackup(t *testing.T) {
	dbPath := setupTestStorage(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	initialCount := len(backups)

	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != initialCount+1 {
		t.Errorf("expected %d backups after restore, got %d", initialCount+1, len(backups))
	}
}

func TestVerifyBackup(t *testing.T) {
	dbPath := setupTestStorage(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if err := mgr.verifyBackup(backupPath); err != nil {
		t.Errorf("verifyBackup failed for valid backup: %v", err)
	}

	invalidPath := filepath.Join(mgr.GetBackupDir(), "invalid.db")
	if err := os.WriteFile(invalidPath, []byte("not a database"), 0600); err != nil {
		t.Fatalf("failed to create invalid file: %v", err)
	}
	if err := mgr.verifyBackup(invalidPath); err == nil {
		t.Error("verifyBackup should fail for invalid backup")
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestStorage(t)
	mgr := NewManager(dbPath)

	paths := make(map[string]bool)
	for i := 0; i < 5; i++ {
		backupPath, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}

		filename := filepath.Base(backupPath)
		if paths[filename] {
			t.Errorf("duplicate backup filename: %s", filename)
		}
		paths[filename] = true
	}
}
