package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Domain is a top-level life category (Work, Health, ...). Names are stored
// canonical-cased and unique; rows are created lazily on first use and never
// deleted by the logging pipeline.
type Domain struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Activity is a specific action within a domain. Uniqueness is scoped to
// (domain_id, name): the same name may exist independently under different domains.
type Activity struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	DomainID  int64     `db:"domain_id" json:"domain_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LogEntry is the canonical stored record for one classified life-log event.
// Mood, energy and productivity are always present in [1,10]; the remaining
// scores and annotations are nullable. Metadata and RelatedLogIDs hold raw
// JSONB; nil means SQL NULL, and empty objects/arrays are never persisted.
type LogEntry struct {
	ID                int64     `db:"id" json:"id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	Content           string    `db:"content" json:"content"`
	Description       string    `db:"description" json:"description"`
	UserInput         string    `db:"user_input" json:"user_input"`
	DomainID          int64     `db:"domain_id" json:"domain_id"`
	ActivityID        int64     `db:"activity_id" json:"activity_id"`
	MoodScore         int       `db:"mood_score" json:"mood_score"`
	EnergyLevel       int       `db:"energy_level" json:"energy_level"`
	ProductivityScore int       `db:"productivity_score" json:"productivity_score"`
	StressLevel       *int      `db:"stress_level" json:"stress_level"`
	SatisfactionScore *int      `db:"satisfaction_score" json:"satisfaction_score"`
	Metadata          []byte    `db:"metadata" json:"-"`
	Location          *string   `db:"location" json:"location"`
	TimeOfDay         *string   `db:"time_of_day" json:"time_of_day"`
	DurationMinutes   *int      `db:"duration_minutes" json:"duration_minutes"`
	Amount            *float64  `db:"amount" json:"amount"`
	Currency          *string   `db:"currency" json:"currency"`
	Sentiment         *string   `db:"sentiment" json:"sentiment"`
	RelatedLogIDs     []byte    `db:"related_log_ids" json:"-"`
	GoalID            *int64    `db:"goal_id" json:"goal_id"`
	Priority          string    `db:"priority" json:"priority"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// LogSummary is the compact retrieval row: an entry joined with its domain and
// activity names, as handed to the generation collaborator or the search API.
type LogSummary struct {
	ID                int64     `db:"id" json:"id"`
	Domain            string    `db:"domain" json:"domain"`
	Activity          string    `db:"activity" json:"activity"`
	Description       string    `db:"description" json:"description"`
	MoodScore         int       `db:"mood_score" json:"mood_score"`
	EnergyLevel       int       `db:"energy_level" json:"energy_level"`
	ProductivityScore int       `db:"productivity_score" json:"productivity_score"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type Goal struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	Title      string     `db:"title" json:"title"`
	TargetDate *time.Time `db:"target_date" json:"target_date,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

type ChatMessage struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	SessionID uuid.UUID `db:"session_id" json:"session_id"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
