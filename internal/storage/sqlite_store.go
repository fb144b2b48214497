package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/routinely/internal/models"
	_ "modernc.org/sqlite"
)

// SchemaVersion is the version the binary expects. Migrations are
// embedded and applied in order on Init; Load refuses databases from a
// newer binary.
const SchemaVersion = 1

var migrations = []string{
	// v1: initial schema
	`CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		schedule TEXT NOT NULL,
		start_date TEXT NOT NULL,
		sessions_per_day REAL NOT NULL DEFAULT 1,
		backlog_enabled INTEGER NOT NULL DEFAULT 1,
		completing_ahead_enabled INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		archived_at TEXT,
		deleted_at TEXT
	);
	CREATE TABLE IF NOT EXISTS completions (
		habit_id TEXT NOT NULL,
		day TEXT NOT NULL,
		times_completed REAL NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (habit_id, day)
	);
	CREATE TABLE IF NOT EXISTS vacations (
		id TEXT PRIMARY KEY,
		habit_id TEXT NOT NULL,
		start_day TEXT NOT NULL,
		end_day TEXT
	);`,
}

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'routinely init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.validateSchemaVersion(); err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) runMigrations() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}

	current, err := s.currentSchemaVersion()
	if err != nil {
		return err
	}

	for v := current; v < len(migrations); v++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
		if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, v+1); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteStore) currentSchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (s *SQLiteStore) validateSchemaVersion() error {
	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to read schema version (database may predate 'routinely init'): %w", err)
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", version, SchemaVersion)
	}
	if version < SchemaVersion {
		return s.runMigrations()
	}
	return nil
}

func (s *SQLiteStore) AddHabit(habit models.Habit) error {
	return s.writeHabit(habit)
}

func (s *SQLiteStore) UpdateHabit(habit models.Habit) error {
	var exists int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM habits WHERE id = ?", habit.ID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("habit not found: %s", habit.ID)
	}
	return s.writeHabit(habit)
}

func (s *SQLiteStore) writeHabit(habit models.Habit) error {
	scheduleJSON, err := json.Marshal(habit.Schedule)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO habits (
			id, name, schedule, start_date, sessions_per_day,
			backlog_enabled, completing_ahead_enabled,
			created_at, archived_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.Name, string(scheduleJSON), habit.StartDate, habit.SessionsPerDay,
		habit.BacklogEnabled, habit.CompletingAheadEnabled,
		habit.CreatedAt.UTC().Format(time.RFC3339), nullTime(habit.ArchivedAt), nullTime(habit.DeletedAt),
	)
	return err
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func scanHabitRow(scan func(dest ...any) error) (models.Habit, error) {
	var (
		h                     models.Habit
		scheduleJSON          string
		createdAt             string
		archivedAt, deletedAt sql.NullString
	)

	err := scan(
		&h.ID, &h.Name, &scheduleJSON, &h.StartDate, &h.SessionsPerDay,
		&h.BacklogEnabled, &h.CompletingAheadEnabled,
		&createdAt, &archivedAt, &deletedAt,
	)
	if err != nil {
		return models.Habit{}, err
	}

	if err := json.Unmarshal([]byte(scheduleJSON), &h.Schedule); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse schedule for habit %s: %w", h.ID, err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		h.CreatedAt = t
	}
	if archivedAt.Valid {
		if t, err := time.Parse(time.RFC3339, archivedAt.String); err == nil {
			h.ArchivedAt = &t
		}
	}
	if deletedAt.Valid {
		if t, err := time.Parse(time.RFC3339, deletedAt.String); err == nil {
			h.DeletedAt = &t
		}
	}

	return h, nil
}

const habitColumns = `id, name, schedule, start_date, sessions_per_day,
	backlog_enabled, completing_ahead_enabled, created_at, archived_at, deleted_at`

func (s *SQLiteStore) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ? AND deleted_at IS NULL`, id)

	habit, err := scanHabitRow(row.Scan)
	if err == sql.ErrNoRows {
		return models.Habit{}, fmt.Errorf("habit not found: %s", id)
	}
	if err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (s *SQLiteStore) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE 1=1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		habit, err := scanHabitRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

func (s *SQLiteStore) ArchiveHabit(id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE habits SET archived_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (s *SQLiteStore) DeleteHabit(id string) error {
	// Soft delete: set deleted_at instead of removing the record
	var deletedAt sql.NullString
	err := s.db.QueryRow("SELECT deleted_at FROM habits WHERE id = ?", id).Scan(&deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("habit not found: %s", id)
		}
		return fmt.Errorf("failed to check habit existence: %w", err)
	}
	if deletedAt.Valid {
		return fmt.Errorf("habit %s is already deleted", id)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec("UPDATE habits SET deleted_at = ? WHERE id = ?", now, id)
	return err
}

func (s *SQLiteStore) RestoreHabit(id string) error {
	var deletedAt sql.NullString
	err := s.db.QueryRow("SELECT deleted_at FROM habits WHERE id = ?", id).Scan(&deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("habit not found: %s", id)
		}
		return fmt.Errorf("failed to check habit existence: %w", err)
	}
	if !deletedAt.Valid {
		return fmt.Errorf("cannot restore a habit that is not deleted: %s", id)
	}

	_, err = s.db.Exec("UPDATE habits SET deleted_at = NULL WHERE id = ?", id)
	return err
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("habit not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) UpsertCompletion(rec models.CompletionRecord) error {
	if _, err := s.GetHabit(rec.HabitID); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO completions (habit_id, day, times_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (habit_id, day) DO UPDATE SET
			times_completed = excluded.times_completed,
			updated_at = excluded.updated_at`,
		rec.HabitID, rec.Day, rec.TimesCompleted, now, now,
	)
	return err
}

func (s *SQLiteStore) GetCompletions(habitID string) ([]models.CompletionRecord, error) {
	rows, err := s.db.Query(`
		SELECT habit_id, day, times_completed, created_at, updated_at
		FROM completions WHERE habit_id = ? ORDER BY day`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.CompletionRecord
	for rows.Next() {
		var (
			rec                  models.CompletionRecord
			createdAt, updatedAt string
		)
		if err := rows.Scan(&rec.HabitID, &rec.Day, &rec.TimesCompleted, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = t
		}
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			rec.UpdatedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) DeleteCompletion(habitID, day string) error {
	res, err := s.db.Exec(`DELETE FROM completions WHERE habit_id = ? AND day = ?`, habitID, day)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no completion recorded for %s on %s", habitID, day)
	}
	return nil
}

func (s *SQLiteStore) AddVacation(vacation models.Vacation) error {
	if _, err := s.GetHabit(vacation.HabitID); err != nil {
		return err
	}

	var endDay sql.NullString
	if vacation.EndDay != "" {
		endDay = sql.NullString{String: vacation.EndDay, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO vacations (id, habit_id, start_day, end_day)
		VALUES (?, ?, ?, ?)`,
		vacation.ID, vacation.HabitID, vacation.StartDay, endDay,
	)
	return err
}

func (s *SQLiteStore) GetVacations(habitID string) ([]models.Vacation, error) {
	rows, err := s.db.Query(`
		SELECT id, habit_id, start_day, end_day
		FROM vacations WHERE habit_id = ? ORDER BY start_day`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vacations []models.Vacation
	for rows.Next() {
		var (
			v      models.Vacation
			endDay sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.HabitID, &v.StartDay, &endDay); err != nil {
			return nil, err
		}
		if endDay.Valid {
			v.EndDay = endDay.String
		}
		vacations = append(vacations, v)
	}
	return vacations, rows.Err()
}

func (s *SQLiteStore) DeleteVacation(id string) error {
	res, err := s.db.Exec(`DELETE FROM vacations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("vacation not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

// GetDB exposes the underlying handle for diagnostics (doctor command).
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}
