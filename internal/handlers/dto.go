package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"lifelog/internal/models"
)

// LogEntryDTO fixes the wire shape of a log entry: RFC3339 timestamps and
// JSONB columns passed through as raw JSON, null when the row stores NULL.
type LogEntryDTO struct {
	ID                int64           `json:"id"`
	Content           string          `json:"content"`
	Description       string          `json:"description"`
	UserInput         string          `json:"user_input"`
	DomainID          int64           `json:"domain_id"`
	ActivityID        int64           `json:"activity_id"`
	MoodScore         int             `json:"mood_score"`
	EnergyLevel       int             `json:"energy_level"`
	ProductivityScore int             `json:"productivity_score"`
	StressLevel       *int            `json:"stress_level"`
	SatisfactionScore *int            `json:"satisfaction_score"`
	Metadata          json.RawMessage `json:"metadata"`
	Location          *string         `json:"location"`
	TimeOfDay         *string         `json:"time_of_day"`
	DurationMinutes   *int            `json:"duration_minutes"`
	Amount            *float64        `json:"amount"`
	Currency          *string         `json:"currency"`
	Sentiment         *string         `json:"sentiment"`
	RelatedLogIDs     json.RawMessage `json:"related_log_ids"`
	GoalID            *int64          `json:"goal_id"`
	Priority          string          `json:"priority"`
	CreatedAt         string          `json:"created_at"`
}

func ToLogEntryDTO(e models.LogEntry) LogEntryDTO {
	return LogEntryDTO{
		ID:                e.ID,
		Content:           e.Content,
		Description:       e.Description,
		UserInput:         e.UserInput,
		DomainID:          e.DomainID,
		ActivityID:        e.ActivityID,
		MoodScore:         e.MoodScore,
		EnergyLevel:       e.EnergyLevel,
		ProductivityScore: e.ProductivityScore,
		StressLevel:       e.StressLevel,
		SatisfactionScore: e.SatisfactionScore,
		Metadata:          rawOrNull(e.Metadata),
		Location:          e.Location,
		TimeOfDay:         e.TimeOfDay,
		DurationMinutes:   e.DurationMinutes,
		Amount:            e.Amount,
		Currency:          e.Currency,
		Sentiment:         e.Sentiment,
		RelatedLogIDs:     rawOrNull(e.RelatedLogIDs),
		GoalID:            e.GoalID,
		Priority:          e.Priority,
		CreatedAt:         e.CreatedAt.Format(time.RFC3339),
	}
}

func toLogEntryDTOs(entries []models.LogEntry) []LogEntryDTO {
	out := make([]LogEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToLogEntryDTO(e))
	}
	return out
}

// GoalDTO keeps target_date a date-only string.
type GoalDTO struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	TargetDate *string `json:"target_date,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

func ToGoalDTO(g models.Goal) GoalDTO {
	return GoalDTO{
		ID:         g.ID,
		Title:      g.Title,
		TargetDate: toDateStringPtr(g.TargetDate),
		CreatedAt:  g.CreatedAt.Format(time.RFC3339),
	}
}

func toDateStringPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func rawOrNull(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
