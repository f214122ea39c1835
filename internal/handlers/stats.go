package handlers

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"lifelog/internal/middleware"
)

type StatsHandler struct {
	db *sqlx.DB
}

func NewStatsHandler(db *sqlx.DB) *StatsHandler { return &StatsHandler{db: db} }

type scoreAverages struct {
	Mood         float64 `json:"mood"`
	Energy       float64 `json:"energy"`
	Productivity float64 `json:"productivity"`
}

type domainStat struct {
	Name    string `db:"name" json:"name"`
	Color   string `db:"color" json:"color"`
	Entries int    `db:"entries" json:"entries"`
}

type overviewResponse struct {
	EntriesWeek       int           `json:"entries_week"`
	EntriesTotal      int           `json:"entries_total"`
	AveragesWeek      scoreAverages `json:"averages_week"`
	AveragesMonth     scoreAverages `json:"averages_month"`
	CurrentStreakDays int           `json:"current_streak_days"`
	DomainsMonth      []domainStat  `json:"domains_month"`
}

// Overview aggregates the caller's recent activity: score averages over the
// trailing week and month, entry counts, the current daily streak and a per
// domain breakdown of the last thirty days.
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	aggQuery := `
		SELECT
			COALESCE(AVG(mood_score) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days'), 0) AS mood_week,
			COALESCE(AVG(energy_level) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days'), 0) AS energy_week,
			COALESCE(AVG(productivity_score) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days'), 0) AS productivity_week,
			COALESCE(AVG(mood_score) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days'), 0) AS mood_month,
			COALESCE(AVG(energy_level) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days'), 0) AS energy_month,
			COALESCE(AVG(productivity_score) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days'), 0) AS productivity_month,
			COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days') AS entries_week,
			COUNT(*) AS entries_total
		FROM log_entries
		WHERE user_id = $1`

	var resp overviewResponse
	err := h.db.QueryRowxContext(r.Context(), aggQuery, userID).Scan(
		&resp.AveragesWeek.Mood, &resp.AveragesWeek.Energy, &resp.AveragesWeek.Productivity,
		&resp.AveragesMonth.Mood, &resp.AveragesMonth.Energy, &resp.AveragesMonth.Productivity,
		&resp.EntriesWeek, &resp.EntriesTotal,
	)
	if err != nil {
		http.Error(w, "could not fetch aggregates", http.StatusInternalServerError)
		return
	}

	// Consecutive calendar days with at least one entry, ending today.
	streakQuery := `
		WITH d AS (
			SELECT DISTINCT created_at::date AS day FROM log_entries WHERE user_id = $1
		), g AS (
			SELECT day, day - (ROW_NUMBER() OVER (ORDER BY day))::int AS grp FROM d
		), c AS (
			SELECT COUNT(*) AS cnt, MAX(day) AS maxd FROM g GROUP BY grp
		)
		SELECT COALESCE((SELECT cnt FROM c WHERE maxd = CURRENT_DATE), 0)`
	if err := h.db.QueryRowxContext(r.Context(), streakQuery, userID).Scan(&resp.CurrentStreakDays); err != nil {
		http.Error(w, "could not compute streak", http.StatusInternalServerError)
		return
	}

	var domains []domainStat
	err = h.db.SelectContext(r.Context(), &domains, `
		SELECT d.name, d.color, COUNT(*) AS entries
		FROM log_entries l
		JOIN domains d ON d.id = l.domain_id
		WHERE l.user_id = $1 AND l.created_at >= NOW() - INTERVAL '30 days'
		GROUP BY d.name, d.color
		ORDER BY entries DESC, d.name`, userID)
	if err != nil {
		http.Error(w, "could not fetch domain breakdown", http.StatusInternalServerError)
		return
	}
	if domains == nil {
		domains = []domainStat{}
	}
	resp.DomainsMonth = domains

	writeJSON(w, http.StatusOK, resp)
}
