package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"lifelog/internal/models"
)

const logEntryColumns = `id, user_id, content, description, user_input, domain_id, activity_id,
	mood_score, energy_level, productivity_score, stress_level, satisfaction_score,
	metadata, location, time_of_day, duration_minutes, amount, currency,
	sentiment, related_log_ids, goal_id, priority, created_at`

const summaryColumns = `l.id, d.name AS domain, a.name AS activity, l.description,
	l.mood_score, l.energy_level, l.productivity_score, l.created_at`

// Engine reads a user's log history.
type Engine struct {
	db *sqlx.DB
}

func NewEngine(db *sqlx.DB) *Engine { return &Engine{db: db} }

// Search runs a full-text lookup over description, user input and content and
// returns the five newest matches. A query with no usable tokens returns
// nothing without touching the database.
func (e *Engine) Search(ctx context.Context, userID int64, query string, filter TokenFilter) ([]models.LogSummary, error) {
	ts := TSQuery(query, filter)
	if ts == "" {
		return nil, nil
	}
	var out []models.LogSummary
	err := e.db.SelectContext(ctx, &out, `
		SELECT `+summaryColumns+`
		FROM log_entries l
		JOIN domains d ON d.id = l.domain_id
		JOIN activities a ON a.id = l.activity_id
		WHERE l.user_id = $1
		  AND to_tsvector('english', l.description || ' ' || l.user_input || ' ' || l.content)
		      @@ to_tsquery('english', $2)
		ORDER BY l.created_at DESC
		LIMIT 5`, userID, ts)
	if err != nil {
		return nil, fmt.Errorf("search logs: %w", err)
	}
	return out, nil
}

// Recent returns the user's full entries from the trailing window of days,
// newest first.
func (e *Engine) Recent(ctx context.Context, userID int64, days int) ([]models.LogEntry, error) {
	var out []models.LogEntry
	err := e.db.SelectContext(ctx, &out, `
		SELECT `+logEntryColumns+`
		FROM log_entries
		WHERE user_id = $1 AND created_at >= NOW() - make_interval(days => $2)
		ORDER BY created_at DESC`, userID, days)
	if err != nil {
		return nil, fmt.Errorf("recent logs: %w", err)
	}
	return out, nil
}

// ListFilter narrows List; nil fields mean no constraint.
type ListFilter struct {
	Start    *time.Time
	End      *time.Time
	DomainID *int64
}

// List returns up to the hundred newest entries matching the filter.
func (e *Engine) List(ctx context.Context, userID int64, f ListFilter) ([]models.LogEntry, error) {
	query := `SELECT ` + logEntryColumns + ` FROM log_entries WHERE user_id = $1`
	args := []any{userID}
	if f.Start != nil {
		args = append(args, *f.Start)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.End != nil {
		args = append(args, *f.End)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	if f.DomainID != nil {
		args = append(args, *f.DomainID)
		query += fmt.Sprintf(" AND domain_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC LIMIT 100"

	var out []models.LogEntry
	if err := e.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return out, nil
}

// PriorContext gathers the context list for a composite flow: a full-text
// search over the message plus a trailing window of recent entries, search
// hits first, deduplicated by id. The window shrinks from three days to two
// when the search found something, so strong signal keeps the block tight.
func (e *Engine) PriorContext(ctx context.Context, userID int64, message string, filter TokenFilter) ([]models.LogSummary, error) {
	hits, err := e.Search(ctx, userID, message, filter)
	if err != nil {
		return nil, err
	}
	days := 3
	if len(hits) > 0 {
		days = 2
	}
	recent, err := e.recentSummaries(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return mergeSummaries(hits, recent), nil
}

// AssembleChatContext is the chat flow's prior context. Stop-word filtering
// lets short salient words ("gym", "run") still drive the search.
func (e *Engine) AssembleChatContext(ctx context.Context, userID int64, message string) ([]models.LogSummary, error) {
	return e.PriorContext(ctx, userID, message, StopwordFilter{})
}

func (e *Engine) recentSummaries(ctx context.Context, userID int64, days int) ([]models.LogSummary, error) {
	var out []models.LogSummary
	err := e.db.SelectContext(ctx, &out, `
		SELECT `+summaryColumns+`
		FROM log_entries l
		JOIN domains d ON d.id = l.domain_id
		JOIN activities a ON a.id = l.activity_id
		WHERE l.user_id = $1 AND l.created_at >= NOW() - make_interval(days => $2)
		ORDER BY l.created_at DESC`, userID, days)
	if err != nil {
		return nil, fmt.Errorf("recent summaries: %w", err)
	}
	return out, nil
}

// mergeSummaries keeps search hits in front and appends recent entries not
// already present, keyed by id.
func mergeSummaries(hits, recent []models.LogSummary) []models.LogSummary {
	seen := make(map[int64]bool, len(hits))
	merged := make([]models.LogSummary, 0, len(hits)+len(recent))
	for _, s := range hits {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		merged = append(merged, s)
	}
	for _, s := range recent {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		merged = append(merged, s)
	}
	return merged
}

// FormatMemoryBlock renders merged summaries one line per entry, ready to
// drop into the generation prompt.
func FormatMemoryBlock(entries []models.LogSummary) string {
	if len(entries) == 0 {
		return "No relevant log history."
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "- [%s] %s/%s: %s (mood %d, energy %d, productivity %d)\n",
			e.CreatedAt.Format("2006-01-02"), e.Domain, e.Activity, e.Description,
			e.MoodScore, e.EnergyLevel, e.ProductivityScore)
	}
	return strings.TrimRight(b.String(), "\n")
}
