package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/julianstephens/routinely/internal/models"
)

type Store struct {
	Version int                     `json:"version"`
	Habits  map[string]models.Habit `json:"habits"`
	// Completions are keyed habit ID -> day (YYYY-MM-DD).
	Completions map[string]map[string]models.CompletionRecord `json:"completions"`
	Vacations   map[string]models.Vacation                    `json:"vacations"`
}

type JSONStore struct {
	path  string
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &Store{
		Version:     1,
		Habits:      make(map[string]models.Habit),
		Completions: make(map[string]map[string]models.CompletionRecord),
		Vacations:   make(map[string]models.Vacation),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'routinely init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &Store{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	// Ensure maps are initialized
	if s.store.Habits == nil {
		s.store.Habits = make(map[string]models.Habit)
	}
	if s.store.Completions == nil {
		s.store.Completions = make(map[string]map[string]models.CompletionRecord)
	}
	if s.store.Vacations == nil {
		s.store.Vacations = make(map[string]models.Vacation)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) AddHabit(habit models.Habit) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	s.store.Habits[habit.ID] = habit
	return s.save()
}

func (s *JSONStore) GetHabit(id string) (models.Habit, error) {
	if s.store == nil {
		return models.Habit{}, fmt.Errorf("storage not loaded")
	}

	habit, ok := s.store.Habits[id]
	if !ok || habit.DeletedAt != nil {
		return models.Habit{}, fmt.Errorf("habit not found: %s", id)
	}

	return habit, nil
}

func (s *JSONStore) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	habits := make([]models.Habit, 0, len(s.store.Habits))
	for _, habit := range s.store.Habits {
		if habit.DeletedAt != nil && !includeDeleted {
			continue
		}
		if habit.ArchivedAt != nil && !includeArchived {
			continue
		}
		habits = append(habits, habit)
	}

	// Map iteration order is random; callers expect stable listings.
	sort.Slice(habits, func(i, j int) bool { return habits[i].Name < habits[j].Name })

	return habits, nil
}

func (s *JSONStore) UpdateHabit(habit models.Habit) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, ok := s.store.Habits[habit.ID]; !ok {
		return fmt.Errorf("habit not found: %s", habit.ID)
	}

	s.store.Habits[habit.ID] = habit
	return s.save()
}

func (s *JSONStore) ArchiveHabit(id string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	habit, ok := s.store.Habits[id]
	if !ok || habit.DeletedAt != nil {
		return fmt.Errorf("habit not found: %s", id)
	}

	now := time.Now().UTC()
	habit.ArchivedAt = &now
	s.store.Habits[id] = habit
	return s.save()
}

func (s *JSONStore) DeleteHabit(id string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	habit, ok := s.store.Habits[id]
	if !ok {
		return fmt.Errorf("habit not found: %s", id)
	}

	// Soft delete: set deleted_at timestamp
	now := time.Now().UTC()
	habit.DeletedAt = &now
	s.store.Habits[id] = habit
	return s.save()
}

func (s *JSONStore) RestoreHabit(id string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	habit, ok := s.store.Habits[id]
	if !ok {
		return fmt.Errorf("habit not found: %s", id)
	}

	// Only allow restoring habits that are currently soft-deleted
	if habit.DeletedAt == nil {
		return fmt.Errorf("cannot restore a habit that is not deleted: %s", id)
	}

	habit.DeletedAt = nil
	s.store.Habits[id] = habit
	return s.save()
}

func (s *JSONStore) UpsertCompletion(rec models.CompletionRecord) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, ok := s.store.Habits[rec.HabitID]; !ok {
		return fmt.Errorf("habit not found: %s", rec.HabitID)
	}

	days := s.store.Completions[rec.HabitID]
	if days == nil {
		days = make(map[string]models.CompletionRecord)
		s.store.Completions[rec.HabitID] = days
	}

	if existing, ok := days[rec.Day]; ok {
		rec.CreatedAt = existing.CreatedAt
	}
	days[rec.Day] = rec
	return s.save()
}

func (s *JSONStore) GetCompletions(habitID string) ([]models.CompletionRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	days := s.store.Completions[habitID]
	records := make([]models.CompletionRecord, 0, len(days))
	for _, rec := range days {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Day < records[j].Day })

	return records, nil
}

func (s *JSONStore) DeleteCompletion(habitID, day string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	days := s.store.Completions[habitID]
	if _, ok := days[day]; !ok {
		return fmt.Errorf("no completion recorded for %s on %s", habitID, day)
	}

	delete(days, day)
	return s.save()
}

func (s *JSONStore) AddVacation(vacation models.Vacation) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, ok := s.store.Habits[vacation.HabitID]; !ok {
		return fmt.Errorf("habit not found: %s", vacation.HabitID)
	}

	s.store.Vacations[vacation.ID] = vacation
	return s.save()
}

func (s *JSONStore) GetVacations(habitID string) ([]models.Vacation, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	vacations := make([]models.Vacation, 0)
	for _, v := range s.store.Vacations {
		if v.HabitID == habitID {
			vacations = append(vacations, v)
		}
	}
	sort.Slice(vacations, func(i, j int) bool { return vacations[i].StartDay < vacations[j].StartDay })

	return vacations, nil
}

func (s *JSONStore) DeleteVacation(id string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, ok := s.store.Vacations[id]; !ok {
		return fmt.Errorf("vacation not found: %s", id)
	}

	delete(s.store.Vacations, id)
	return s.save()
}

// GetConfigPath returns the path to the underlying storage file.
//
// Concurrency note:
//   - JSONStore is not safe for concurrent use by multiple goroutines
//     without external synchronization.
//   - Running multiple routinely processes against the same storage path
//     is not supported and may lead to data loss.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
