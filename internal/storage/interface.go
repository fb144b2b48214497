package storage

import "github.com/julianstephens/routinely/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	ArchiveHabit(id string) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error

	// Completions. Upsert replaces any prior count for the same
	// (habit, day) pair.
	UpsertCompletion(models.CompletionRecord) error
	GetCompletions(habitID string) ([]models.CompletionRecord, error)
	DeleteCompletion(habitID, day string) error

	// Vacations
	AddVacation(models.Vacation) error
	GetVacations(habitID string) ([]models.Vacation, error)
	DeleteVacation(id string) error

	// Utils
	GetConfigPath() string
}
