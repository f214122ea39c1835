package normalize

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"lifelog/internal/taxonomy"
)

// SaveResult reports the outcome of persisting one classified payload.
type SaveResult struct {
	LogID      int64
	DomainID   int64
	ActivityID int64
}

// Saver turns untrusted payloads into stored log entries.
type Saver struct {
	db       *sqlx.DB
	resolver *taxonomy.Resolver
}

func NewSaver(db *sqlx.DB, resolver *taxonomy.Resolver) *Saver {
	return &Saver{db: db, resolver: resolver}
}

// SaveClassifiedLog normalizes the payload, resolves its domain and activity
// and inserts the entry in a single statement.
func (s *Saver) SaveClassifiedLog(ctx context.Context, userID int64, p Payload) (*SaveResult, error) {
	rec := Build(p)

	domainID, err := s.resolver.ResolveDomain(ctx, rec.DomainName)
	if err != nil {
		return nil, err
	}
	activityID, err := s.resolver.ResolveActivity(ctx, rec.ActivityName, domainID)
	if err != nil {
		return nil, err
	}

	var metadata []byte
	if rec.Metadata != nil {
		metadata, err = json.Marshal(rec.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
	}
	var related []byte
	if len(rec.RelatedLogIDs) > 0 {
		related, err = json.Marshal(rec.RelatedLogIDs)
		if err != nil {
			return nil, fmt.Errorf("marshal related log ids: %w", err)
		}
	}

	var logID int64
	err = s.db.QueryRowxContext(ctx, `
		INSERT INTO log_entries (
			user_id, content, description, user_input, domain_id, activity_id,
			mood_score, energy_level, productivity_score, stress_level, satisfaction_score,
			metadata, location, time_of_day, duration_minutes, amount, currency,
			sentiment, related_log_ids, goal_id, priority
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		) RETURNING id`,
		userID, rec.Content, rec.Description, rec.UserInput, domainID, activityID,
		rec.MoodScore, rec.EnergyLevel, rec.ProductivityScore, rec.StressLevel, rec.SatisfactionScore,
		metadata, rec.Location, rec.TimeOfDay, rec.DurationMinutes, rec.Amount, rec.Currency,
		rec.Sentiment, related, rec.GoalID, rec.Priority,
	).Scan(&logID)
	if err != nil {
		return nil, fmt.Errorf("insert log entry: %w", err)
	}

	return &SaveResult{LogID: logID, DomainID: domainID, ActivityID: activityID}, nil
}
