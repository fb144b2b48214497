package models

import "time"

// Habit represents a recurring routine to track
type Habit struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Schedule  ScheduleSpec `json:"schedule"`
	StartDate string       `json:"start_date"` // YYYY-MM-DD format

	// SessionsPerDay is the completion count required for a due date to
	// count as fully completed. Fractional values represent partial
	// sessions. Must be positive.
	SessionsPerDay float64 `json:"sessions_per_day"`

	// BacklogEnabled allows missed due dates to be compensated by
	// completions recorded on later non-due dates.
	BacklogEnabled bool `json:"backlog_enabled"`

	// CompletingAheadEnabled allows over-completions on non-due dates to
	// pre-credit upcoming due dates.
	CompletingAheadEnabled bool `json:"completing_ahead_enabled"`

	CreatedAt  time.Time  `json:"created_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// CompletionRecord represents a single day's completion count for a
// habit. At most one record exists per (habit, day); inserting again
// replaces the prior count.
type CompletionRecord struct {
	HabitID        string    `json:"habit_id"`
	Day            string    `json:"day"` // YYYY-MM-DD format
	TimesCompleted float64   `json:"times_completed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Vacation suspends failure semantics for a habit over a date interval
// without altering due-ness. An empty EndDay means open-ended.
type Vacation struct {
	ID       string `json:"id"`
	HabitID  string `json:"habit_id"`
	StartDay string `json:"start_day"`         // YYYY-MM-DD format
	EndDay   string `json:"end_day,omitempty"` // YYYY-MM-DD format, inclusive
}

// Contains reports whether day (YYYY-MM-DD) falls inside the vacation.
// Lexicographic comparison is sound for the fixed-width day format.
func (v Vacation) Contains(day string) bool {
	if day < v.StartDay {
		return false
	}
	return v.EndDay == "" || day <= v.EndDay
}
